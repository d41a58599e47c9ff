package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-yeartiles/internal/config"
)

var newYearsEve = time.Date(2025, 12, 31, 9, 0, 0, 0, time.UTC)

func TestInlineSpecials(t *testing.T) {
	tests := []struct {
		name    string
		compact string
		special string
		want    int
		label   string
	}{
		{"compact", "1-1-ff0000-New%20Year-", "", 1, "New Year"},
		{"json", "", `[{"month":7,"day":14,"color":"#22d3ee","label":"Bastille"}]`, 1, "Bastille"},
		{"compact wins", "1-1-ff0000-A-", `[{"month":7,"day":14,"color":"#22d3ee","label":"B"}]`, 1, "A"},
		{"none", "", "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inlineSpecials(tt.compact, tt.special)
			require.Len(t, got, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.label, got[0].Label)
			}
		})
	}
}

func TestRunRender_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "wall.png")

	err := runRender(renderOptions{
		timeZone: "Europe/Paris",
		compact:  "12-31-fbbf24-NYE-",
		width:    10,
		height:   99999,
		lang:     "fr",
		out:      out,
	}, newYearsEve)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, config.MinWidth, img.Bounds().Dx(), "width is clamped")
	assert.Equal(t, config.MaxHeight, img.Bounds().Dy(), "height is clamped")
}

func TestRunPreview(t *testing.T) {
	var buf bytes.Buffer
	err := runPreview(&buf, previewOptions{
		timeZone: "UTC",
		compact:  "12-31-fbbf24-NYE-",
		columns:  config.GridColumns,
		lang:     "en",
	}, newYearsEve)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "NYE")
	assert.Contains(t, out, "days left")
	assert.Equal(t, 365, strings.Count(out, "■"))
}
