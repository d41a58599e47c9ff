package profile_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/profile/profiletest"
)

func TestNew_Compliance(t *testing.T) {
	profiletest.Run(t, func(t *testing.T) profile.Store {
		s, err := profile.New(context.Background(), profile.Options{
			Backend:         config.StoreFile,
			DataFile:        filepath.Join(t.TempDir(), "profiles.json"),
			EncodedFallback: true,
		})
		require.NoError(t, err)
		return s
	})
}

func TestNew_BackendSelection(t *testing.T) {
	_, ts := newFakeBlobServer(t, "secret")
	dir := t.TempDir()

	tests := []struct {
		name string
		opts profile.Options
		want string
	}{
		{"auto without blob", profile.Options{Backend: config.StoreAuto, DataFile: filepath.Join(dir, "a.json")}, config.StoreFile},
		{"auto with blob", profile.Options{Backend: config.StoreAuto, BlobBaseURL: ts.URL, BlobToken: "secret"}, config.StoreBlob},
		{"empty is auto", profile.Options{DataFile: filepath.Join(dir, "b.json")}, config.StoreFile},
		{"sqlite", profile.Options{Backend: config.StoreSQLite, SQLitePath: filepath.Join(dir, "c.db")}, config.StoreSQLite},
		{"encoded", profile.Options{Backend: config.StoreEncoded}, config.StoreEncoded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := profile.New(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Kind())
		})
	}

	_, err := profile.New(context.Background(), profile.Options{Backend: "redis"})
	assert.ErrorContains(t, err, config.ErrUnknownStore)

	_, err = profile.New(context.Background(), profile.Options{Backend: config.StorePostgres})
	assert.EqualError(t, err, config.ErrPostgresDSN)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.ServerConfig{
		Store:           config.StoreSQLite,
		BlobBaseURL:     "https://b",
		BlobToken:       "t",
		DataFile:        "d.json",
		SQLitePath:      "s.db",
		PostgresDSN:     "postgres://x",
		EncodedFallback: true,
	}
	assert.Equal(t, profile.Options{
		Backend:         config.StoreSQLite,
		BlobBaseURL:     "https://b",
		BlobToken:       "t",
		DataFile:        "d.json",
		SQLitePath:      "s.db",
		PostgresDSN:     "postgres://x",
		EncodedFallback: true,
	}, profile.OptionsFromConfig(cfg))
}

// An unconfigured blob primary with fallback on behaves like the encoded store.
func TestChain_FallbackOnUnconfiguredBlob(t *testing.T) {
	s, err := profile.New(context.Background(), profile.Options{
		Backend:         config.StoreBlob,
		EncodedFallback: true,
		Clock:           fixedClock,
	})
	require.NoError(t, err)
	assert.Equal(t, config.StoreBlob, s.Kind())

	ctx := context.Background()
	payload := profile.Payload{
		TimeZone:    "America/New_York",
		SpecialDays: []engine.SpecialDay{{Month: 12, Day: 25, Color: "#ff0000", Label: "Xmas"}},
	}

	rec, err := s.Create(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, profile.RefInline, profile.ParseRef(rec.ID).Kind)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payload.SpecialDays, got.SpecialDays)

	payload.TimeZone = "UTC"
	updated, err := s.Update(ctx, rec.ID, payload)
	require.NoError(t, err)
	assert.NotEqual(t, rec.ID, updated.ID, "updating an inline profile yields a new id")
}

func TestChain_NoFallbackSurfacesError(t *testing.T) {
	s, err := profile.New(context.Background(), profile.Options{Backend: config.StoreBlob})
	require.NoError(t, err)

	_, err = s.Create(context.Background(), profile.Payload{TimeZone: "UTC"})
	assert.ErrorIs(t, err, profile.ErrNotConfigured)
}

func TestChain_InlineIDsResolveWithPersistentBackend(t *testing.T) {
	s, err := profile.New(context.Background(), profile.Options{
		Backend:  config.StoreFile,
		DataFile: filepath.Join(t.TempDir(), "p.json"),
	})
	require.NoError(t, err)

	id, err := profile.EncodeInline(profile.Payload{TimeZone: "Asia/Tokyo"}, fixedClock.CurrentTime)
	require.NoError(t, err)

	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", rec.TimeZone)
}

func TestChain_StoredUpdateFallsBack(t *testing.T) {
	fake, ts := newFakeBlobServer(t, "secret")
	fake.set("profiles/abc.json", `{"id":"abc","timeZone":"UTC","specialDays":[]}`)

	// Reads work but every write is rejected.
	s, err := profile.New(context.Background(), profile.Options{
		Backend:         config.StoreBlob,
		BlobBaseURL:     ts.URL,
		BlobToken:       "wrong",
		EncodedFallback: true,
	})
	require.NoError(t, err)

	rec, err := s.Update(context.Background(), "abc", profile.Payload{TimeZone: "Europe/Paris"})
	require.NoError(t, err)
	assert.Equal(t, profile.RefInline, profile.ParseRef(rec.ID).Kind)

	_, err = s.Update(context.Background(), "missing", profile.Payload{TimeZone: "UTC"})
	assert.True(t, errors.Is(err, profile.ErrNotFound), "not-found is never degraded")
}
