package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/server"
)

var xmas = []engine.SpecialDay{{Month: 12, Day: 25, Color: "#ff0000", Label: "New Year", IsBirthday: false}}

// newAPI serves the real profile API on top of the given store options.
func newAPI(t *testing.T, opts profile.Options) *httptest.Server {
	t.Helper()
	store, err := profile.New(context.Background(), opts)
	require.NoError(t, err)

	ts := httptest.NewServer(server.NewAPIServer(store, MockClock{CurrentTime: christmasAfternoon}, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func fileStoreOptions(t *testing.T) profile.Options {
	return profile.Options{
		Backend:  config.StoreFile,
		DataFile: filepath.Join(t.TempDir(), "profiles.json"),
	}
}

func parseLink(t *testing.T, link string) (*url.URL, url.Values) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u, u.Query()
}

// -----------------------------------------------------------------------------
// Share Client
// -----------------------------------------------------------------------------

func TestShare_CreateThenUpdate(t *testing.T) {
	ts := newAPI(t, fileStoreOptions(t))
	client := NewShareClient(ts.URL + "/")

	res := client.Generate(context.Background(), ShareRequest{
		TimeZone:    "Europe/Paris",
		SpecialDays: xmas,
		Preset:      "1290x2796",
	})
	require.False(t, res.Inline)
	require.NotEmpty(t, res.ProfileID)

	u, q := parseLink(t, res.URL)
	assert.Equal(t, config.RouteImage, u.Path)
	assert.Equal(t, res.ProfileID, q.Get(config.QueryID))
	assert.Equal(t, "1290", q.Get(config.QueryWidth))
	assert.Equal(t, "2796", q.Get(config.QueryHeight))
	assert.Empty(t, q.Get(config.QueryCompact), "profile links carry no inline data")

	again := client.Generate(context.Background(), ShareRequest{
		TimeZone:  "UTC",
		ProfileID: res.ProfileID,
		Preset:    "bogus",
	})
	assert.Equal(t, res.ProfileID, again.ProfileID, "stored profiles keep their id")
	_, q = parseLink(t, again.URL)
	assert.Equal(t, "1170", q.Get(config.QueryWidth), "an unreadable preset uses the default size")
}

func TestShare_AdoptsEncodedID(t *testing.T) {
	ts := newAPI(t, profile.Options{Backend: config.StoreEncoded})
	client := NewShareClient(ts.URL)

	first := client.Generate(context.Background(), ShareRequest{TimeZone: "UTC", Preset: config.DefaultWallpaperPreset})
	require.NotEmpty(t, first.ProfileID)

	second := client.Generate(context.Background(), ShareRequest{
		TimeZone:    "UTC",
		SpecialDays: xmas,
		ProfileID:   first.ProfileID,
		Preset:      config.DefaultWallpaperPreset,
	})
	assert.NotEqual(t, first.ProfileID, second.ProfileID, "encoded profiles change id on update")
	assert.False(t, second.Inline)
}

func TestShare_FallbackToInline(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"storage-error"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewShareClient(ts.URL)

	t.Run("create fails", func(t *testing.T) {
		res := client.Generate(context.Background(), ShareRequest{
			TimeZone:    "America/New_York",
			SpecialDays: xmas,
			Preset:      config.DefaultWallpaperPreset,
		})
		assert.True(t, res.Inline)
		assert.Empty(t, res.ProfileID)

		_, q := parseLink(t, res.URL)
		assert.Equal(t, "America/New_York", q.Get(config.QueryTZ))
		assert.Equal(t, "12-25-ff0000-New%20Year-", q.Get(config.QueryCompact))
		assert.Empty(t, q.Get(config.QueryID))
	})

	t.Run("no specials", func(t *testing.T) {
		res := client.Generate(context.Background(), ShareRequest{TimeZone: "UTC"})
		_, q := parseLink(t, res.URL)
		assert.Equal(t, "UTC", q.Get(config.QueryTZ))
		assert.False(t, q.Has(config.QueryCompact))
	})

	t.Run("update fails keeps previous id", func(t *testing.T) {
		res := client.Generate(context.Background(), ShareRequest{TimeZone: "UTC", ProfileID: "abc123"})
		assert.False(t, res.Inline)
		assert.Equal(t, "abc123", res.ProfileID)
	})

	assert.EqualValues(t, 3, calls.Load())
}

func TestShare_Unreachable(t *testing.T) {
	client := NewShareClient("http://127.0.0.1:1")

	res := client.Generate(context.Background(), ShareRequest{TimeZone: "UTC", SpecialDays: xmas})
	assert.True(t, res.Inline)
	assert.Contains(t, res.URL, "http://127.0.0.1:1"+config.RouteImage)
}

// -----------------------------------------------------------------------------
// App Integration
// -----------------------------------------------------------------------------

func TestApplyShare_AdoptsAndPersists(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Hydrate()
	app.ShowMainWindow()

	ts := newAPI(t, profile.Options{Backend: config.StoreEncoded})
	app.Share = NewShareClient(ts.URL)
	app.UpsertSpecial(xmas[0], nil)

	res := app.Share.Generate(app.Ctx, app.shareRequest())
	app.applyShare(res)

	assert.Equal(t, res.ProfileID, app.Settings.ProfileID)
	assert.Equal(t, res.URL, app.view.shareEntry.Text)
	assert.Empty(t, app.view.statusLabel.Text)
	assert.Equal(t, res.ProfileID, storedSettings(t, app)["profileId"])

	require.True(t, app.CopyLink())
	assert.Equal(t, res.URL, app.App.Clipboard().Content())
}

func TestApplyShare_InlineNotice(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Hydrate()
	app.ShowMainWindow()

	app.applyShare(ShareResult{URL: "http://x/api/image?tz=UTC", Inline: true})
	assert.Equal(t, "Profile service unavailable, the link embeds your dates", app.view.statusLabel.Text)
}

func TestCopyLink_Empty(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Hydrate()
	app.ShowMainWindow()

	assert.False(t, app.CopyLink())
	app.copyWithFeedback()
	assert.Equal(t, "Copy failed", app.view.statusLabel.Text)
}
