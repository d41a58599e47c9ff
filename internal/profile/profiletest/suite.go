// Package profiletest is a compliance suite shared by every profile.Store backend.
package profiletest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/profile"
)

// Run exercises the Store contract. makeStore must return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) profile.Store) {
	t.Helper()

	t.Run("CreateThenGet", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		in := profile.Payload{
			TimeZone:    "America/New_York",
			SpecialDays: []engine.SpecialDay{{Month: 12, Day: 25, Color: "#ff0000", Label: "Xmas"}},
		}
		rec, err := s.Create(ctx, in)
		require.NoError(t, err)
		require.NotEmpty(t, rec.ID)
		assert.False(t, rec.UpdatedAt.IsZero())

		got, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, in.TimeZone, got.TimeZone)
		assert.Equal(t, in.SpecialDays, got.SpecialDays)
		assert.True(t, rec.UpdatedAt.Equal(got.UpdatedAt), "updatedAt must survive storage")
	})

	t.Run("DistinctIDs", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		a, err := s.Create(ctx, profile.Payload{TimeZone: "UTC"})
		require.NoError(t, err)
		b, err := s.Create(ctx, profile.Payload{TimeZone: "Europe/Paris"})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("SanitizesOnWrite", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		rec, err := s.Create(ctx, profile.Payload{
			TimeZone: "UTC",
			SpecialDays: []engine.SpecialDay{
				{Month: 2, Day: 30, Color: "#fff"},
				{Month: 13, Day: 1, Color: "#fff"},
				{Month: 1, Day: 1, Color: ""},
				{Month: 2, Day: 29, Color: "#fff"},
			},
		})
		require.NoError(t, err)

		got, err := s.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, []engine.SpecialDay{{Month: 2, Day: 29, Color: "#fff"}}, got.SpecialDays)
	})

	t.Run("UpdateOverwrites", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		rec, err := s.Create(ctx, profile.Payload{
			TimeZone:    "UTC",
			SpecialDays: []engine.SpecialDay{{Month: 1, Day: 1, Color: "#000000"}},
		})
		require.NoError(t, err)

		next := profile.Payload{
			TimeZone:    "Asia/Tokyo",
			SpecialDays: []engine.SpecialDay{{Month: 7, Day: 7, Color: "#22d3ee", Label: "Tanabata"}},
		}
		updated, err := s.Update(ctx, rec.ID, next)
		require.NoError(t, err)
		require.NotEmpty(t, updated.ID)

		// Callers adopt the returned id, which may differ.
		got, err := s.Get(ctx, updated.ID)
		require.NoError(t, err)
		assert.Equal(t, next.TimeZone, got.TimeZone)
		assert.Equal(t, next.SpecialDays, got.SpecialDays, "no merge with the previous special days")
	})

	t.Run("UpdateUnknownIsNotFound", func(t *testing.T) {
		s := makeStore(t)
		ctx := context.Background()

		_, err := s.Update(ctx, "does-not-exist", profile.Payload{TimeZone: "UTC"})
		assert.True(t, errors.Is(err, profile.ErrNotFound), "got %v", err)

		_, err = s.Get(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, profile.ErrNotFound), "update must not create a record, got %v", err)
	})

	t.Run("GetUnknownIsNotFound", func(t *testing.T) {
		s := makeStore(t)
		_, err := s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, profile.ErrNotFound)
	})

	t.Run("Kind", func(t *testing.T) {
		assert.NotEmpty(t, makeStore(t).Kind())
	})
}
