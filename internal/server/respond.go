package server

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// errorBody is the only error shape that crosses the HTTP boundary.
type errorBody struct {
	Error     string `json:"error"`
	ProfileID string `json:"profileId,omitempty"`
}

type idBody struct {
	ID string `json:"id"`
}

type healthBody struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorBody{Error: code})
}

// etagFor returns a strong validator derived from the payload.
func etagFor(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
}

// serveCached writes data with an ETag and answers If-None-Match with 304.
// HEAD requests get headers only.
func serveCached(w http.ResponseWriter, r *http.Request, data []byte, contentType, cacheControl string) {
	etag := etagFor(data)

	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, cacheControl)
	w.Header().Set(config.HeaderETag, etag)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
