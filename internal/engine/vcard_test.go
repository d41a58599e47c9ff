package engine_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.VCardFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

const sampleVCards = `BEGIN:VCARD
VERSION:4.0
FN:John Doe
BDAY:1990-12-25
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Leap Baby
BDAY:--0229
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Smith;Jane;;;
BDAY:19850704
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:No Birthday
END:VCARD
BEGIN:VCARD
VERSION:3.0
FN:Broken Date
BDAY:sometime in may
END:VCARD`

func TestImportVCard(t *testing.T) {
	got, err := engine.ImportVCard(context.Background(), strings.NewReader(sampleVCards))
	require.NoError(t, err)

	assert.Equal(t, []engine.SpecialDay{
		{Month: 2, Day: 29, Color: config.DefaultSpecialColor, Label: "Leap Baby", IsBirthday: true},
		{Month: 7, Day: 4, Color: config.DefaultSpecialColor, Label: "Jane Smith", IsBirthday: true},
		{Month: 12, Day: 25, Color: config.DefaultSpecialColor, Label: "John Doe", IsBirthday: true},
	}, got)
}

func TestImportVCard_Empty(t *testing.T) {
	got, err := engine.ImportVCard(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestImportVCard_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ImportVCard(ctx, strings.NewReader(sampleVCards))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportVCardFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleVCards), config.FilePermUserRW))

	got, err := engine.ImportVCardFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, err = engine.ImportVCardFile(context.Background(), filepath.Join(t.TempDir(), "missing.vcf"))
	assert.Error(t, err)
}

func TestImportVCardURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, "https://dav.example.com/book", "me", "pw").
			Return(io.NopCloser(strings.NewReader(sampleVCards)), nil)

		got, err := engine.ImportVCardURL(context.Background(), fetcher, "https://dav.example.com/book", "me", "pw")
		require.NoError(t, err)
		assert.Len(t, got, 3)
		fetcher.AssertExpectations(t)
	})

	t.Run("network error", func(t *testing.T) {
		fetcher := new(MockFetcher)
		fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("network unreachable"))

		_, err := engine.ImportVCardURL(context.Background(), fetcher, "https://x", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "network unreachable")
	})

	t.Run("missing fetcher", func(t *testing.T) {
		_, err := engine.ImportVCardURL(context.Background(), nil, "https://x", "", "")
		assert.EqualError(t, err, config.ErrFetcherMissing)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestImportVCard_ReaderFailure(t *testing.T) {
	_, err := engine.ImportVCard(context.Background(), failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrVCardParse)
	assert.Contains(t, err.Error(), "connection reset")
}
