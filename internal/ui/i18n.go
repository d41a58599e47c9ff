package ui

import (
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/locale"
)

// SetupI18n loads the embedded translations and detects available languages.
func (app *YearTilesApp) SetupI18n() {
	if app.Locales == nil {
		app.Locales = locale.Load()
	}
	app.SupportedLanguages = app.Locales.Languages()
	app.UpdateLocalizer()
}

// UpdateLocalizer refreshes the translator from the language preference.
func (app *YearTilesApp) UpdateLocalizer() {
	lang := app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
	app.Tr = app.Locales.Translator(app.Locales.Match(lang))
}

// GetMsg translates a key, returning the key itself when it is unknown.
func (app *YearTilesApp) GetMsg(key string) string {
	return app.Tr.Msg(key)
}

// GetFormat translates a templated key.
func (app *YearTilesApp) GetFormat(key string, data map[string]any) string {
	return app.Tr.Format(key, data)
}

// statsText renders the "N days left · P%" header.
func (app *YearTilesApp) statsText(stats engine.YearStats) string {
	return app.GetFormat(config.TKeyLblStats, map[string]any{
		"DaysLeft": stats.DaysLeft,
		"Percent":  stats.Percent,
	})
}

// describeSpecial returns the caption shown for a special day.
func (app *YearTilesApp) describeSpecial(item engine.SpecialDay) string {
	switch {
	case item.IsBirthday && item.Label != "":
		return app.GetFormat(config.TKeyEvtBirthday, map[string]any{"Name": item.Label})
	case item.Label != "":
		return item.Label
	default:
		return app.GetMsg(config.TKeyEvtSpecial)
	}
}
