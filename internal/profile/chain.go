package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// chain routes inline refs to the encoded store and, when fallback is on,
// degrades failed persistent writes to encoded profiles.
type chain struct {
	primary  Store
	encoded  *EncodedStore
	fallback bool
}

func (c *chain) Kind() string { return c.primary.Kind() }

func (c *chain) Create(ctx context.Context, p Payload) (*Record, error) {
	rec, err := c.primary.Create(ctx, p)
	observe(c.primary.Kind(), opCreate, err)
	if err == nil || !c.degradable(err) {
		return rec, err
	}

	c.logFallback(ctx, err, "")
	rec, err = c.encoded.Create(ctx, p)
	observe(config.StoreEncoded, opCreate, err)
	return rec, err
}

func (c *chain) Update(ctx context.Context, id string, p Payload) (*Record, error) {
	if ParseRef(id).Kind == RefInline {
		rec, err := c.encoded.Update(ctx, id, p)
		observe(config.StoreEncoded, opUpdate, err)
		return rec, err
	}

	rec, err := c.primary.Update(ctx, id, p)
	observe(c.primary.Kind(), opUpdate, err)
	if err == nil || !c.degradable(err) {
		return rec, err
	}

	c.logFallback(ctx, err, id)
	rec, err = c.encoded.Create(ctx, p)
	observe(config.StoreEncoded, opUpdate, err)
	return rec, err
}

func (c *chain) Get(ctx context.Context, id string) (*Record, error) {
	if ParseRef(id).Kind == RefInline {
		rec, err := c.encoded.Get(ctx, id)
		observe(config.StoreEncoded, opGet, err)
		return rec, err
	}

	rec, err := c.primary.Get(ctx, id)
	observe(c.primary.Kind(), opGet, err)
	return rec, err
}

func (c *chain) degradable(err error) bool {
	return c.fallback && (errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrNotConfigured))
}

func (c *chain) logFallback(ctx context.Context, err error, id string) {
	slog.WarnContext(ctx, config.MsgStoreFallback,
		config.LogKeyComponent, config.CompProfile,
		config.LogKeyBackend, c.primary.Kind(),
		config.LogKeyProfileID, id,
		config.LogKeyError, err)
}
