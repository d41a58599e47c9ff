package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/profile"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// christmasMorning is 09:00 in New York on Dec 25 2025.
var christmasMorning = MockClock{CurrentTime: time.Date(2025, time.December, 25, 14, 0, 0, 0, time.UTC)}

var testLocales = locale.Load()

func newTestServer(t *testing.T, clock engine.Clock, opts profile.Options) *APIServer {
	t.Helper()
	if opts.Backend == "" {
		opts.Backend = config.StoreFile
		opts.DataFile = filepath.Join(t.TempDir(), "profiles.json")
	}
	store, err := profile.New(context.Background(), opts)
	require.NoError(t, err)
	return NewAPIServer(store, clock, testLocales)
}

func do(t *testing.T, h http.Handler, method, target, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	assert.Equal(t, config.MimeJSON, resp.Header.Get(config.HeaderContentType))
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodePNG(t *testing.T, resp *http.Response) image.Image {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimePNG, resp.Header.Get(config.HeaderContentType))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	return img
}

func pixelAt(img image.Image, x, y int) [3]uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func tileCenter(t *testing.T, now time.Time, in render.Input, date string) (int, int) {
	t.Helper()
	scene, err := render.Compose(now, in)
	require.NoError(t, err)
	tile, ok := scene.TileAt(date)
	require.True(t, ok, date)
	return (tile.Rect.Min.X + tile.Rect.Max.X) / 2, (tile.Rect.Min.Y + tile.Rect.Max.Y) / 2
}

// -----------------------------------------------------------------------------
// Profile API
// -----------------------------------------------------------------------------

func TestProfile_CreateGetUpdate(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	h := s.Handler()

	resp := do(t, h, http.MethodPost, config.RouteProfile,
		`{"timeZone":"America/New_York","specialDays":[{"month":12,"day":25,"color":"#ff0000","label":"Xmas"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id, _ := decodeJSON(t, resp)["id"].(string)
	require.NotEmpty(t, id)

	resp = do(t, h, http.MethodGet, config.RouteProfile+"/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec profile.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "America/New_York", rec.TimeZone)
	assert.Equal(t, []engine.SpecialDay{{Month: 12, Day: 25, Color: "#ff0000", Label: "Xmas"}}, rec.SpecialDays)

	resp = do(t, h, http.MethodPut, config.RouteProfile+"/"+id, `{"timeZone":"UTC","specialDays":[]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, decodeJSON(t, resp)["id"])

	resp = do(t, h, http.MethodGet, config.RouteProfile+"/"+id, "")
	body := decodeJSON(t, resp)
	assert.Equal(t, "UTC", body["timeZone"])
	assert.Empty(t, body["specialDays"])
}

func TestProfile_Errors(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	h := s.Handler()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"Get unknown id", http.MethodGet, "/api/profile/does-not-exist", "", http.StatusNotFound, config.CodeNotFound},
		{"Update unknown id", http.MethodPut, "/api/profile/does-not-exist", `{"timeZone":"UTC"}`, http.StatusNotFound, config.CodeNotFound},
		{"Create with broken JSON", http.MethodPost, config.RouteProfile, `{"timeZone":`, http.StatusBadRequest, config.CodeInvalidBody},
		{"Create with array body", http.MethodPost, config.RouteProfile, `[1,2]`, http.StatusBadRequest, config.CodeInvalidBody},
		{"Create with null body", http.MethodPost, config.RouteProfile, `null`, http.StatusBadRequest, config.CodeInvalidBody},
		{"Create without timezone", http.MethodPost, config.RouteProfile, `{"specialDays":[]}`, http.StatusBadRequest, config.CodeInvalidTimeZone},
		{"Create with numeric timezone", http.MethodPost, config.RouteProfile, `{"timeZone":5}`, http.StatusBadRequest, config.CodeInvalidTimeZone},
		{"Update with broken JSON", http.MethodPut, "/api/profile/abc", `nope`, http.StatusBadRequest, config.CodeInvalidBody},
		{"Update without timezone", http.MethodPut, "/api/profile/abc", `{"timeZone":""}`, http.StatusBadRequest, config.CodeInvalidTimeZone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeJSON(t, resp)["error"])
		})
	}
}

func TestProfile_SanitizesAndTruncates(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	h := s.Handler()

	resp := do(t, h, http.MethodPost, config.RouteProfile,
		`{"timeZone":"UTC","specialDays":[{"month":2,"day":30,"color":"#fff"},{"month":3.9,"day":1.2,"color":"#abc"},{"month":13,"day":1,"color":"#fff"},"junk",{"month":4,"day":4}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := decodeJSON(t, resp)["id"].(string)

	rec, err := s.Store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []engine.SpecialDay{{Month: 3, Day: 1, Color: "#abc"}}, rec.SpecialDays)
}

func TestProfile_BlobNotConfigured(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{Backend: config.StoreBlob})
	h := s.Handler()

	resp := do(t, h, http.MethodPost, config.RouteProfile, `{"timeZone":"UTC","specialDays":[]}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, config.CodeBlobNotConfigured, decodeJSON(t, resp)["error"])

	resp = do(t, h, http.MethodPut, "/api/profile/abc123", `{"timeZone":"UTC"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, config.CodeBlobNotConfigured, decodeJSON(t, resp)["error"])
}

func TestProfile_EncodedFallback(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{Backend: config.StoreBlob, EncodedFallback: true})
	h := s.Handler()

	resp := do(t, h, http.MethodPost, config.RouteProfile,
		`{"timeZone":"Europe/Paris","specialDays":[{"month":7,"day":14,"color":"#22d3ee"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := decodeJSON(t, resp)["id"].(string)
	assert.True(t, strings.HasPrefix(id, config.EncodedIDPrefix))

	resp = do(t, h, http.MethodGet, "/api/profile/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Europe/Paris", decodeJSON(t, resp)["timeZone"])

	// Updating an inline profile hands back a different id.
	resp = do(t, h, http.MethodPut, "/api/profile/"+id, `{"timeZone":"UTC"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	newID := decodeJSON(t, resp)["id"].(string)
	assert.NotEqual(t, id, newID)
	assert.True(t, strings.HasPrefix(newID, config.EncodedIDPrefix))
}

// -----------------------------------------------------------------------------
// Image API
// -----------------------------------------------------------------------------

func TestImage_ProfileOnChristmas(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	h := s.Handler()

	resp := do(t, h, http.MethodPost, config.RouteProfile,
		`{"timeZone":"America/New_York","specialDays":[{"month":12,"day":25,"color":"#ff0000","label":"Xmas"}]}`)
	id := decodeJSON(t, resp)["id"].(string)

	// Inline params are ignored when a profile id is given.
	resp = do(t, h, http.MethodGet, "/api/image?w=800&h=1200&tz=Asia/Tokyo&s=12-25-00ff00--&id="+id, "")
	img := decodePNG(t, resp)
	assert.Equal(t, image.Rect(0, 0, 800, 1200), img.Bounds())
	assert.Equal(t, config.CacheControlPublic, resp.Header.Get(config.HeaderCacheControl))

	x, y := tileCenter(t, christmasMorning.CurrentTime, render.Input{
		TimeZone:    "America/New_York",
		SpecialDays: []engine.SpecialDay{{Month: 12, Day: 25, Color: "#ff0000", Label: "Xmas"}},
		Width:       800,
		Height:      1200,
	}, "2025-12-25")
	assert.Equal(t, [3]uint32{0xff, 0, 0}, pixelAt(img, x, y))
}

func TestImage_CompactInline(t *testing.T) {
	newYear := MockClock{CurrentTime: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestServer(t, newYear, profile.Options{})

	resp := do(t, s.Handler(), http.MethodGet, "/api/image?tz=UTC&w=800&h=1200&s=1-1-ff0000-New%2520Year-", "")
	img := decodePNG(t, resp)

	x, y := tileCenter(t, newYear.CurrentTime, render.Input{
		TimeZone:    "UTC",
		SpecialDays: engine.DecodeCompact("1-1-ff0000-New%20Year-"),
		Width:       800,
		Height:      1200,
	}, "2025-01-01")
	assert.Equal(t, [3]uint32{0xff, 0, 0}, pixelAt(img, x, y))

	// No birthday: the corners stay the plain background.
	assert.Equal(t, [3]uint32{0x09, 0x09, 0x0b}, pixelAt(img, 0, 0))
}

func TestImage_JSONSpecialAndPrecedence(t *testing.T) {
	newYear := MockClock{CurrentTime: time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestServer(t, newYear, profile.Options{})
	in := render.Input{TimeZone: "UTC", Width: 800, Height: 1200}
	x, y := tileCenter(t, newYear.CurrentTime, in, "2025-01-01")

	special := url.QueryEscape(`[{"month":1,"day":1,"color":"#00ff00"}]`)

	resp := do(t, s.Handler(), http.MethodGet, "/api/image?w=800&h=1200&special="+special, "")
	assert.Equal(t, [3]uint32{0, 0xff, 0}, pixelAt(decodePNG(t, resp), x, y))

	resp = do(t, s.Handler(), http.MethodGet, "/api/image?w=800&h=1200&s=1-1-0000ff--&special="+special, "")
	assert.Equal(t, [3]uint32{0, 0, 0xff}, pixelAt(decodePNG(t, resp), x, y), "compact wins")
}

func TestImage_Dimensions(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})

	tests := []struct {
		query string
		want  image.Rectangle
	}{
		{"w=100&h=100", image.Rect(0, 0, config.MinWidth, config.MinHeight)},
		{"w=abc&h=1300", image.Rect(0, 0, config.DefaultWidth, 1300)},
		{"w=900&h=99999", image.Rect(0, 0, 900, config.MaxHeight)},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, s.Handler(), http.MethodGet, "/api/image?"+tt.query, "")
			assert.Equal(t, tt.want, decodePNG(t, resp).Bounds())
		})
	}
}

func TestImage_UnknownProfile(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})

	resp := do(t, s.Handler(), http.MethodGet, "/api/image?id=missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, config.CodeNotFound, body["error"])
	assert.Equal(t, "missing", body["profileId"])
}

func TestImage_ETag(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	target := "/api/image?w=800&h=1200"

	resp := do(t, s.Handler(), http.MethodGet, target, "")
	etag := resp.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(config.HeaderIfNoneMatch, etag)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestImage_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	resp := do(t, s.Handler(), http.MethodPost, config.RouteImage, "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Calendar, import, health, metrics
// -----------------------------------------------------------------------------

func TestCalendar(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})

	resp := do(t, s.Handler(), http.MethodGet, "/api/calendar?lang=fr&s=3-14-e879f9-Ada-b~7-14-22d3ee--", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	ics := string(body)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "RRULE:FREQ=YEARLY")
	assert.Contains(t, ics, "Anniversaire : Ada")
	assert.Contains(t, ics, "Jour spécial")
}

func TestCalendar_UnknownProfile(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	resp := do(t, s.Handler(), http.MethodGet, "/api/calendar?id=nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImportVCard(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	cards := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nBDAY:1815-12-10\r\nEND:VCARD\r\n" +
		"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:No Birthday\r\nEND:VCARD\r\n"

	resp := do(t, s.Handler(), http.MethodPost, config.RouteImportVCard, cards)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out importBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []engine.SpecialDay{
		{Month: 12, Day: 10, Color: config.DefaultSpecialColor, Label: "Ada Lovelace", IsBirthday: true},
	}, out.SpecialDays)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})

	resp := do(t, s.Handler(), http.MethodGet, config.RouteHealth, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, config.StatusOK, body["status"])
	assert.Equal(t, config.StoreFile, body["backend"])
	assert.NotEmpty(t, resp.Header.Get(config.HeaderRequestID))

	resp = do(t, s.Handler(), http.MethodGet, config.RouteMetrics, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "yeartiles_http_requests_total")
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	req := httptest.NewRequest(http.MethodGet, config.RouteHealth, nil)
	req.Header.Set(config.HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(config.HeaderRequestID))
}

func TestRecoverMiddleware(t *testing.T) {
	h := recoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	resp := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeJSON(t, resp)
	assert.Equal(t, config.CodeInternal, body["error"])
	assert.Len(t, body, 1, "no internals cross the boundary")
}

// -----------------------------------------------------------------------------
// Lambda adapter
// -----------------------------------------------------------------------------

func TestLambdaHandler(t *testing.T) {
	s := newTestServer(t, christmasMorning, profile.Options{})
	fn := LambdaHandler(s.Handler())
	ctx := context.Background()

	event := func(method, path, query, body string, b64 bool) events.APIGatewayV2HTTPRequest {
		return events.APIGatewayV2HTTPRequest{
			RawPath:         path,
			RawQueryString:  query,
			Body:            body,
			IsBase64Encoded: b64,
			Headers:         map[string]string{"content-type": config.MimeJSON},
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				RequestID: "lambda-req-1",
				HTTP:      events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: method, Path: path},
			},
		}
	}

	t.Run("JSON response stays text", func(t *testing.T) {
		resp, err := fn(ctx, event(http.MethodGet, config.RouteHealth, "", "", false))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, resp.IsBase64Encoded)
		assert.Contains(t, resp.Body, `"status":"ok"`)
		assert.Equal(t, "lambda-req-1", resp.Headers[http.CanonicalHeaderKey(config.HeaderRequestID)])
	})

	t.Run("Base64 request body", func(t *testing.T) {
		body := base64.StdEncoding.EncodeToString([]byte(`{"timeZone":"UTC","specialDays":[]}`))
		resp, err := fn(ctx, event(http.MethodPost, config.RouteProfile, "", body, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, `"id"`)
	})

	t.Run("Invalid base64 body", func(t *testing.T) {
		resp, err := fn(ctx, event(http.MethodPost, config.RouteProfile, "", "%%%", true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("PNG response is base64", func(t *testing.T) {
		resp, err := fn(ctx, event(http.MethodGet, config.RouteImage, "w=800&h=1200", "", false))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, resp.IsBase64Encoded)

		raw, err := base64.StdEncoding.DecodeString(resp.Body)
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 800, 1200), img.Bounds())
	})
}

func TestIsTextual(t *testing.T) {
	assert.True(t, isTextual(""))
	assert.True(t, isTextual(config.MimeJSON))
	assert.True(t, isTextual(config.MimeTextCalendar))
	assert.False(t, isTextual(config.MimePNG))
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

func TestServer_Lifecycle(t *testing.T) {
	const addr = "127.0.0.1:18099"

	s := newTestServer(t, nil, profile.Options{})
	s.Addr = addr
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- s.Start(ctx)
	}()

	healthURL := "http://" + addr + config.RouteHealth
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestServer_StartRequiresAddr(t *testing.T) {
	s := newTestServer(t, nil, profile.Options{})
	assert.EqualError(t, s.Start(context.Background()), config.ErrPortRequired)
}
