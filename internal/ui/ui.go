package ui

import (
	"context"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/render"
	"github.com/tartampluch/go-yeartiles/internal/settings"
)

// YearTilesApp holds the desktop state, preferences and background logic.
// Settings, Now and ShareURL are only touched on the fyne main goroutine.
type YearTilesApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	Locales     *locale.Bundle
	Tr          *locale.Translator
	Ctx         context.Context

	Fetcher engine.VCardFetcher
	Clock   engine.Clock // Injected clock for testability
	Share   *ShareClient

	SupportedLanguages []string

	Settings settings.Settings
	Now      time.Time
	Preset   string
	ShareURL string

	hydrated  bool
	tzChanged chan string

	view         *mainView
	editorWindow fyne.Window
}

// NewYearTilesApp constructs the application and wires dependencies.
func NewYearTilesApp(a fyne.App, ctx context.Context, fetcher engine.VCardFetcher, apiBaseURL string) *YearTilesApp {
	if icon, err := render.Icon(config.UIIconSize); err == nil {
		a.SetIcon(fyne.NewStaticResource(config.IconFile, icon))
	} else {
		slog.Warn(config.MsgIconFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}

	prefs := a.Preferences()
	base := prefs.StringWithFallback(config.PrefAPIBaseURL, apiBaseURL)
	if base == "" {
		base = config.DefaultAPIBaseURL
	}

	return &YearTilesApp{
		App:         a,
		Preferences: prefs,
		Ctx:         ctx,
		Fetcher:     fetcher,
		Clock:       engine.RealClock{},
		Share:       NewShareClient(base),
		Preset:      prefs.StringWithFallback(config.PrefPreset, config.DefaultWallpaperPreset),
		tzChanged:   make(chan string, config.ChannelBufferSize),
	}
}

// Run hydrates the state, shows the main window and blocks in the UI loop.
func (app *YearTilesApp) Run() {
	app.SetupI18n()
	app.Hydrate()

	go app.midnightWorker(app.Settings.TimeZone)

	app.ShowMainWindow()
	app.App.Run()
}

// Hydrate loads the stored settings. Nothing is written back while hydrating.
func (app *YearTilesApp) Hydrate() {
	app.hydrated = false
	app.Settings = settings.Load(app.Preferences, localZoneName())
	app.refresh()
	app.hydrated = true
}

// localZoneName returns the IANA name of the machine zone, or UTC.
func localZoneName() string {
	name := time.Local.String()
	if name == "Local" {
		return config.DefaultTimeZone
	}
	if _, ok := engine.ResolveLocation(name); !ok {
		return config.DefaultTimeZone
	}
	return name
}

// persist writes the settings after every edit once hydration is done.
func (app *YearTilesApp) persist() {
	if !app.hydrated {
		return
	}
	if err := settings.Save(app.Preferences, app.Settings); err != nil {
		slog.Error(config.ErrSettingsEncode, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}
}

// refresh recomputes "now" in the selected zone and redraws the view.
func (app *YearTilesApp) refresh() {
	app.Now = engine.NowIn(app.Clock, app.Settings.TimeZone)
	if app.view != nil {
		app.view.update(app)
	}
}

// SetTimeZone selects a new zone and reschedules the midnight worker.
func (app *YearTilesApp) SetTimeZone(tz string) {
	if tz == "" || tz == app.Settings.TimeZone {
		return
	}
	app.Settings.TimeZone = tz
	app.persist()
	app.refresh()
	app.notifyTimeZone(tz)
}

// UpsertSpecial stores item, moving it when replacing names another date.
func (app *YearTilesApp) UpsertSpecial(item engine.SpecialDay, replacing *engine.MonthDay) {
	app.Settings.SpecialDays = engine.UpsertSpecialDay(app.Settings.SpecialDays, item, replacing)
	slog.Info(config.MsgSpecialSaved,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(app.Settings.SpecialDays))
	app.persist()
	app.refresh()
}

// RemoveSpecial deletes the entry on month/day.
func (app *YearTilesApp) RemoveSpecial(month, day int) {
	app.Settings.SpecialDays = engine.RemoveSpecialDay(app.Settings.SpecialDays, month, day)
	slog.Info(config.MsgSpecialRemoved,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyCount, len(app.Settings.SpecialDays))
	app.persist()
	app.refresh()
}

// MergeImported adds imported birthdays. An imported entry replaces an
// existing one on the same date.
func (app *YearTilesApp) MergeImported(items []engine.SpecialDay) {
	if len(items) == 0 {
		return
	}
	list := app.Settings.SpecialDays
	for _, item := range items {
		list = engine.UpsertSpecialDay(list, item, nil)
	}
	app.Settings.SpecialDays = list
	app.persist()
	app.refresh()
}

// SetPreset remembers the wallpaper size used by share links.
func (app *YearTilesApp) SetPreset(preset string) {
	if preset == "" {
		return
	}
	app.Preset = preset
	app.Preferences.SetString(config.PrefPreset, preset)
}

// SetLanguage switches the UI language and rebuilds the window content.
func (app *YearTilesApp) SetLanguage(lang string) {
	app.Preferences.SetString(config.PrefLanguage, lang)
	app.UpdateLocalizer()
	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
		app.Window.SetContent(app.buildContent())
	}
}

// applyShare adopts the id returned by the API and publishes the link.
func (app *YearTilesApp) applyShare(res ShareResult) {
	if res.ProfileID != app.Settings.ProfileID {
		app.Settings.ProfileID = res.ProfileID
		app.persist()
	}
	app.ShareURL = res.URL
	if app.view != nil {
		app.view.showShare(app, res)
	}
}

// shareRequest snapshots the state sent to the profile API.
func (app *YearTilesApp) shareRequest() ShareRequest {
	return ShareRequest{
		TimeZone:    app.Settings.TimeZone,
		SpecialDays: append([]engine.SpecialDay(nil), app.Settings.SpecialDays...),
		ProfileID:   app.Settings.ProfileID,
		Preset:      app.Preset,
	}
}

// GenerateLink upserts the profile off the UI goroutine and applies the
// result back on it.
func (app *YearTilesApp) GenerateLink() {
	req := app.shareRequest()
	go func() {
		res := app.Share.Generate(app.Ctx, req)
		fyne.Do(func() { app.applyShare(res) })
	}()
}

// CopyLink puts the current share link on the clipboard.
func (app *YearTilesApp) CopyLink() bool {
	if app.ShareURL == "" {
		return false
	}
	app.App.Clipboard().SetContent(app.ShareURL)
	slog.Debug(config.MsgClipboard, config.LogKeyComponent, config.CompUI)
	return true
}

// notifyTimeZone hands the newest zone to the worker, replacing a pending one.
func (app *YearTilesApp) notifyTimeZone(tz string) {
	select {
	case <-app.tzChanged:
	default:
	}
	select {
	case app.tzChanged <- tz:
	default:
	}
}

// untilMidnight returns the wait before the next local day in tz.
func (app *YearTilesApp) untilMidnight(tz string) time.Duration {
	now := engine.NowIn(app.Clock, tz)
	return engine.NextMidnight(now).Sub(now)
}

// midnightWorker advances the grid at each local midnight. It is
// rescheduled when it fires or when the zone changes.
func (app *YearTilesApp) midnightWorker(tz string) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	wait := app.untilMidnight(tz)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyTimeZone, tz, config.LogKeyNext, wait)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case tz = <-app.tzChanged:
			wait = app.untilMidnight(tz)
			timer.Reset(wait)
			log.Info(config.MsgWorkerResched, config.LogKeyTimeZone, tz, config.LogKeyNext, wait)

		case <-timer.C:
			log.Info(config.MsgMidnightTick, config.LogKeyTimeZone, tz)
			fyne.Do(app.refresh)
			timer.Reset(app.untilMidnight(tz))
		}
	}
}
