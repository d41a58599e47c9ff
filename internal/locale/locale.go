package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Bundle holds every embedded translation file.
type Bundle struct {
	bundle    *i18n.Bundle
	languages []string
	matcher   language.Matcher
}

// Load parses the embedded locales. Files that fail to load are logged and skipped.
func Load() *Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	b := &Bundle{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		b.matcher = language.NewMatcher([]language.Tag{language.English})
		return b
	}

	tags := []language.Tag{language.English}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}

		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
		b.languages = append(b.languages, langCode)
		if tag, err := language.Parse(langCode); err == nil && tag != language.English {
			tags = append(tags, tag)
		}
	}

	b.matcher = language.NewMatcher(tags)
	return b
}

// Languages lists the language codes found in the embedded files.
func (b *Bundle) Languages() []string {
	return append([]string(nil), b.languages...)
}

// Match picks the closest supported language for a BCP 47 tag or an
// Accept-Language header value. Unknown input resolves to English.
func (b *Bundle) Match(preferred string) string {
	tags, _, err := language.ParseAcceptLanguage(preferred)
	if err != nil || len(tags) == 0 {
		return config.DefaultLanguage
	}
	tag, _, _ := b.matcher.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}

// Translator returns a localizer for lang.
func (b *Bundle) Translator(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(b.bundle, lang, config.DefaultLanguage),
	}
}

// Translator resolves message ids for one language.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// Lang returns the language the translator was built for.
func (t *Translator) Lang() string {
	return t.lang
}

// Msg translates key, returning the key itself when it is missing.
func (t *Translator) Msg(key string) string {
	return t.Format(key, nil)
}

// Format translates key with template data.
func (t *Translator) Format(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
