package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/profile"
)

// decodePayload reads {timeZone, specialDays}. It writes the 400 response
// itself and reports false on failure. Special days are parsed leniently.
func decodePayload(w http.ResponseWriter, r *http.Request) (profile.Payload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxRequestBodySize)

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, config.CodeInvalidBody)
		return profile.Payload{}, false
	}

	tz, _ := body["timeZone"].(string)
	if tz == "" {
		writeError(w, http.StatusBadRequest, config.CodeInvalidTimeZone)
		return profile.Payload{}, false
	}

	return profile.Payload{
		TimeZone:    tz,
		SpecialDays: engine.ParseSpecialDays(body["specialDays"]),
	}, true
}

// writeStoreError maps store failures onto the public error codes.
func writeStoreError(w http.ResponseWriter, r *http.Request, id string, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		slog.InfoContext(r.Context(), config.MsgProfileMissing,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyProfileID, id,
		)
		writeError(w, http.StatusNotFound, config.CodeNotFound)
	case errors.Is(err, profile.ErrNotConfigured):
		writeError(w, http.StatusInternalServerError, config.CodeBlobNotConfigured)
	default:
		slog.ErrorContext(r.Context(), config.ErrStoreWrite,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyProfileID, id,
			config.LogKeyRequestID, RequestID(r.Context()),
			config.LogKeyError, err,
		)
		writeError(w, http.StatusInternalServerError, config.CodeStorageError)
	}
}

func (s *APIServer) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	rec, err := s.Store.Create(r.Context(), payload)
	if err != nil {
		writeStoreError(w, r, "", err)
		return
	}

	slog.InfoContext(r.Context(), config.MsgProfileCreated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyProfileID, rec.ID,
		config.LogKeyCount, len(rec.SpecialDays),
	)
	writeJSON(w, http.StatusOK, idBody{ID: rec.ID})
}

func (s *APIServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[config.PathVarID]

	rec, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *APIServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)[config.PathVarID]

	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	rec, err := s.Store.Update(r.Context(), id, payload)
	if err != nil {
		writeStoreError(w, r, id, err)
		return
	}

	slog.InfoContext(r.Context(), config.MsgProfileUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyProfileID, rec.ID,
		config.LogKeyCount, len(rec.SpecialDays),
	)
	writeJSON(w, http.StatusOK, idBody{ID: rec.ID})
}
