package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

const iconCells = 4

// Icon draws the application icon: a small tile grid with a few past days,
// today and the rest of the year.
func Icon(size int) ([]byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	fill(img, mustHex(config.ColorBackground))

	gap := max(1, size/16)
	cell := (size - gap*(iconCells+1)) / iconCells
	offset := (size - (cell*iconCells + gap*(iconCells-1))) / 2
	radius := max(1, cell/5)

	today := iconCells + 2
	for i := 0; i < iconCells*iconCells; i++ {
		hex := config.ColorFuture
		switch {
		case i < today:
			hex = config.ColorPast
		case i == today:
			hex = config.ColorToday
		}
		x := offset + (i%iconCells)*(cell+gap)
		y := offset + (i/iconCells)*(cell+gap)
		fillRoundedRect(img, image.Rect(x, y, x+cell, y+cell), radius, mustHex(hex))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRenderEncode, err)
	}
	return buf.Bytes(), nil
}
