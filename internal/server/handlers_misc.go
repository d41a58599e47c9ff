package server

import (
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

type importBody struct {
	SpecialDays []engine.SpecialDay `json:"specialDays"`
}

// handleImportVCard converts an uploaded vCard stream into birthday entries.
// Nothing is stored; the client merges the result into its settings.
func (s *APIServer) handleImportVCard(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, config.MaxVCardUploadBytes)

	specials, err := engine.ImportVCard(r.Context(), body)
	if err != nil {
		slog.WarnContext(r.Context(), config.ErrVCardParse,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
		writeError(w, http.StatusBadRequest, config.CodeInvalidBody)
		return
	}
	writeJSON(w, http.StatusOK, importBody{SpecialDays: specials})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: config.StatusOK, Backend: s.Store.Kind()})
}
