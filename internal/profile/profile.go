// Package profile stores shareable {timezone, special days} bundles behind a
// small set of interchangeable backends.
package profile

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// Sentinel errors. Backends wrap them so callers can use errors.Is.
var (
	ErrNotFound           = errors.New("profile not found")
	ErrStorageUnavailable = errors.New("profile storage unavailable")
	ErrNotConfigured      = errors.New("blob store not configured")
)

// Payload is the client-supplied part of a profile.
type Payload struct {
	TimeZone    string              `json:"timeZone"`
	SpecialDays []engine.SpecialDay `json:"specialDays"`
}

// Record is a stored (or decoded) profile.
type Record struct {
	ID          string              `json:"id"`
	TimeZone    string              `json:"timeZone"`
	SpecialDays []engine.SpecialDay `json:"specialDays"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Payload returns the client-supplied fields of r.
func (r *Record) Payload() Payload {
	return Payload{TimeZone: r.TimeZone, SpecialDays: r.SpecialDays}
}

// Store is the profile persistence contract.
//
// Update and Get return ErrNotFound for unknown ids; Update never creates.
// Update may return a record whose ID differs from the requested one
// (stateless encoded profiles); callers must adopt the returned ID.
type Store interface {
	Create(ctx context.Context, p Payload) (*Record, error)
	Update(ctx context.Context, id string, p Payload) (*Record, error)
	Get(ctx context.Context, id string) (*Record, error)
	Kind() string
}

// Sanitize drops invalid special days. It is applied on every write.
func (p Payload) Sanitize() Payload {
	return Payload{
		TimeZone:    p.TimeZone,
		SpecialDays: engine.SanitizeSpecialDays(p.SpecialDays),
	}
}

func newRecord(id string, p Payload, clock engine.Clock) *Record {
	p = p.Sanitize()
	return &Record{
		ID:          id,
		TimeZone:    p.TimeZone,
		SpecialDays: p.SpecialDays,
		UpdatedAt:   clock.Now().UTC().Truncate(time.Millisecond),
	}
}

// IDGenerator produces candidate profile ids.
type IDGenerator func() string

// RandomID returns a 12 character URL-safe hex token from a random UUID.
func RandomID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:6])
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrStorageUnavailable, err)
}
