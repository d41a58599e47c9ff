package profile

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// EncodedStore keeps nothing: the id is the data.
// Updating produces a new id; the old one keeps decoding to the old payload.
type EncodedStore struct {
	Clock engine.Clock
}

// NewEncodedStore returns a stateless store.
func NewEncodedStore(clock engine.Clock) *EncodedStore {
	if clock == nil {
		clock = engine.RealClock{}
	}
	return &EncodedStore{Clock: clock}
}

// Kind implements Store.
func (s *EncodedStore) Kind() string { return config.StoreEncoded }

// Create implements Store.
func (s *EncodedStore) Create(_ context.Context, p Payload) (*Record, error) {
	rec := newRecord("", p, s.Clock)
	id, err := EncodeInline(rec.Payload(), rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrProfileEncode, err)
	}
	rec.ID = id
	return rec, nil
}

// Update implements Store. The previous id must decode; the result has a new id.
func (s *EncodedStore) Update(ctx context.Context, id string, p Payload) (*Record, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.Create(ctx, p)
}

// Get implements Store.
func (s *EncodedStore) Get(_ context.Context, id string) (*Record, error) {
	ref := ParseRef(id)
	if ref.Kind != RefInline || !ref.Valid() {
		return nil, ErrNotFound
	}
	return &Record{
		ID:          ref.ID,
		TimeZone:    ref.Payload.TimeZone,
		SpecialDays: ref.Payload.SpecialDays,
		UpdatedAt:   ref.UpdatedAt,
	}, nil
}
