// Package settings persists the desktop user's timezone, special days and
// profile id as a single JSON document in a key/value preference store.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// Store is the subset of fyne.Preferences used for persistence.
type Store interface {
	String(key string) string
	SetString(key string, value string)
}

// Settings is the client-local state.
type Settings struct {
	TimeZone    string              `json:"timeZone"`
	SpecialDays []engine.SpecialDay `json:"specialDays"`
	ProfileID   string              `json:"profileId,omitempty"`
}

// Defaults returns empty settings in the given zone.
func Defaults(timeZone string) Settings {
	return Settings{TimeZone: timeZone, SpecialDays: []engine.SpecialDay{}}
}

// Load reads the stored blob. It never fails: a missing or corrupt blob
// yields defaults and each special day is validated on its own.
func Load(store Store, fallbackTimeZone string) Settings {
	base := Defaults(fallbackTimeZone)
	if store == nil {
		return base
	}

	raw := store.String(config.PrefSettingsBlob)
	if raw == "" {
		return base
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed == nil {
		slog.Warn(config.MsgSettingsBad,
			config.LogKeyComponent, config.CompSettings,
			config.LogKeyError, err)
		return base
	}

	out := base
	if tz, ok := parsed["timeZone"].(string); ok {
		out.TimeZone = tz
	}
	out.SpecialDays = engine.ParseSpecialDays(parsed["specialDays"])
	if id, ok := parsed["profileId"].(string); ok {
		out.ProfileID = id
	}
	return out
}

// Save overwrites the stored blob with s. No merge with prior state.
func Save(store Store, s Settings) error {
	if store == nil {
		return nil
	}
	if s.SpecialDays == nil {
		s.SpecialDays = []engine.SpecialDay{}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSettingsEncode, err)
	}
	store.SetString(config.PrefSettingsBlob, string(data))

	slog.Debug(config.MsgSettingsSaved,
		config.LogKeyComponent, config.CompSettings,
		config.LogKeyCount, len(s.SpecialDays))
	return nil
}
