package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

// resolvePayload picks the wallpaper inputs: a stored profile when id is
// present, otherwise inline tz plus compact or JSON special days (compact wins).
// It writes the error response itself and reports false on failure.
func (s *APIServer) resolvePayload(w http.ResponseWriter, r *http.Request) (profile.Payload, bool) {
	q := r.URL.Query()

	if id := q.Get(config.QueryID); id != "" {
		rec, err := s.Store.Get(r.Context(), id)
		if err == nil {
			return rec.Payload(), true
		}
		if errors.Is(err, profile.ErrNotFound) {
			slog.InfoContext(r.Context(), config.MsgProfileMissing,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyProfileID, id,
			)
			writeJSON(w, http.StatusNotFound, errorBody{Error: config.CodeNotFound, ProfileID: id})
			return profile.Payload{}, false
		}
		writeStoreError(w, r, id, err)
		return profile.Payload{}, false
	}

	tz := q.Get(config.QueryTZ)
	if tz == "" {
		tz = config.DefaultTimeZone
	}

	var specials []engine.SpecialDay
	if compact := q.Get(config.QueryCompact); compact != "" {
		specials = engine.DecodeCompact(compact)
	} else if raw := q.Get(config.QuerySpecial); raw != "" {
		specials = engine.ParseSpecialDaysJSON(raw)
	}

	return profile.Payload{TimeZone: tz, SpecialDays: specials}, true
}

func (s *APIServer) translator(r *http.Request) *locale.Translator {
	lang := config.DefaultLanguage
	if q := r.URL.Query().Get(config.QueryLang); q != "" {
		lang = s.Locales.Match(q)
	}
	return s.Locales.Translator(lang)
}

func (s *APIServer) handleImage(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.resolvePayload(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	in := render.Input{
		TimeZone:     payload.TimeZone,
		SpecialDays:  payload.SpecialDays,
		Width:        render.ParseDimension(q.Get(config.QueryWidth), config.DefaultWidth, config.MinWidth, config.MaxWidth),
		Height:       render.ParseDimension(q.Get(config.QueryHeight), config.DefaultHeight, config.MinHeight, config.MaxHeight),
		DaysLeftText: s.translator(r).Msg(config.TKeyDaysLeft),
	}

	start := time.Now()
	data, err := render.Render(s.Clock.Now(), in)
	renderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		slog.ErrorContext(r.Context(), config.ErrRenderEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRequestID, RequestID(r.Context()),
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal)
		return
	}

	serveCached(w, r, data, config.MimePNG, config.CacheControlPublic)
}

func (s *APIServer) handleCalendar(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.resolvePayload(w, r)
	if !ok {
		return
	}

	tr := s.translator(r)
	summary := func(item engine.SpecialDay) string {
		switch {
		case item.IsBirthday && item.Label != "":
			return tr.Format(config.TKeyEvtBirthday, map[string]any{"Name": item.Label})
		case item.Label != "":
			return item.Label
		default:
			return tr.Msg(config.TKeyEvtSpecial)
		}
	}

	now := engine.NowIn(s.Clock, payload.TimeZone)
	data, err := engine.BuildCalendar(now, payload.SpecialDays, summary)
	if err != nil {
		slog.ErrorContext(r.Context(), config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeInternal)
		return
	}

	serveCached(w, r, data, config.MimeTextCalendar, config.CacheControlPrivate)
}
