package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// BlobStore keeps one JSON object per profile in a remote object store
// reachable over plain HTTP (HEAD/GET/PUT on {base}/profiles/{id}.json).
// Writes are authenticated with a bearer token.
type BlobStore struct {
	BaseURL string
	Token   string
	Clock   engine.Clock
	NewID   IDGenerator

	client *resty.Client
}

// NewBlobStore returns a store for baseURL. An empty baseURL or token leaves
// the store unconfigured: writes fail with ErrNotConfigured and reads miss.
func NewBlobStore(baseURL, token string, clock engine.Clock) *BlobStore {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &BlobStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Clock:   clock,
		NewID:   RandomID,
		client: resty.New().
			SetTimeout(config.HTTPTimeout).
			SetHeader(config.HeaderUserAgent, config.UserAgent),
	}
}

// Kind implements Store.
func (s *BlobStore) Kind() string { return config.StoreBlob }

func (s *BlobStore) configured() bool {
	return s.BaseURL != "" && s.Token != ""
}

func (s *BlobStore) objectURL(id string) string {
	return s.BaseURL + "/" + config.ProfileKeyPrefix + id + config.ProfileKeySuffix
}

// Create implements Store. Candidate ids are probed with HEAD until a free key is found.
func (s *BlobStore) Create(ctx context.Context, p Payload) (*Record, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}

	for i := 0; i < config.MaxIDAttempts; i++ {
		id := s.NewID()
		exists, err := s.exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		rec := newRecord(id, p, s.Clock)
		if err := s.put(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, unavailable(config.ErrIDExhausted, fmt.Errorf("%d attempts", config.MaxIDAttempts))
}

// Update implements Store. The object must already exist; it is overwritten unconditionally.
func (s *BlobStore) Update(ctx context.Context, id string, p Payload) (*Record, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rec := newRecord(id, p, s.Clock)
	if err := s.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get implements Store. Every failure (transport, status, schema) reads as not found.
func (s *BlobStore) Get(ctx context.Context, id string) (*Record, error) {
	if s.BaseURL == "" || id == "" {
		return nil, ErrNotFound
	}

	log := slog.With(config.LogKeyComponent, config.CompProfile, config.LogKeyProfileID, id)

	resp, err := s.request(ctx).Get(s.objectURL(id))
	if err != nil {
		log.Warn(config.ErrStoreRead, config.LogKeyError, err)
		return nil, ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		log.Debug(config.MsgProfileMissing, config.LogKeyStatus, resp.StatusCode())
		return nil, ErrNotFound
	}

	var raw map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		log.Warn(config.MsgBlobMalformed, config.LogKeyError, err)
		return nil, ErrNotFound
	}
	tz, ok := raw["timeZone"].(string)
	if !ok || tz == "" {
		log.Warn(config.MsgBlobMalformed)
		return nil, ErrNotFound
	}

	rec := &Record{
		ID:          id,
		TimeZone:    tz,
		SpecialDays: engine.ParseSpecialDays(raw["specialDays"]),
	}
	if ts, ok := raw["updatedAt"].(string); ok {
		_ = rec.UpdatedAt.UnmarshalText([]byte(ts))
	}
	return rec, nil
}

func (s *BlobStore) request(ctx context.Context) *resty.Request {
	req := s.client.R().SetContext(ctx)
	if s.Token != "" {
		req.SetAuthToken(s.Token)
	}
	return req
}

func (s *BlobStore) exists(ctx context.Context, id string) (bool, error) {
	resp, err := s.request(ctx).Head(s.objectURL(id))
	if err != nil {
		return false, unavailable(config.ErrStoreRead, err)
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		return false, nil
	case http.StatusOK:
		return true, nil
	default:
		return false, unavailable(config.ErrBlobStatus, fmt.Errorf("HEAD %d", resp.StatusCode()))
	}
}

func (s *BlobStore) put(ctx context.Context, rec *Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrProfileEncode, err)
	}

	resp, err := s.request(ctx).
		SetHeader(config.HeaderContentType, config.MimeJSON).
		SetBody(body).
		Put(s.objectURL(rec.ID))
	if err != nil {
		return unavailable(config.ErrStoreWrite, err)
	}
	if resp.IsError() {
		return unavailable(config.ErrBlobStatus, fmt.Errorf("PUT %d", resp.StatusCode()))
	}
	return nil
}
