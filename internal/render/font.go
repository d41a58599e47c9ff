package render

import (
	"fmt"
	"sync"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// letterSpacing is added after every glyph, in pixels.
const letterSpacing = 1

var (
	fontOnce  sync.Once
	monoFont  *opentype.Font
	fontErr   error
	faceMu    sync.Mutex
	faceCache = map[int]font.Face{}
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		monoFont, fontErr = opentype.Parse(gomono.TTF)
		if fontErr != nil {
			fontErr = fmt.Errorf("%s: %w", config.ErrFontLoad, fontErr)
		}
	})
	return monoFont, fontErr
}

// faceFor returns a cached monospace face sized in pixels.
func faceFor(px int) (font.Face, error) {
	f, err := loadFont()
	if err != nil {
		return nil, err
	}

	faceMu.Lock()
	defer faceMu.Unlock()

	if face, ok := faceCache[px]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFontLoad, err)
	}
	faceCache[px] = face
	return face, nil
}

// measure returns the advance of s including letter spacing.
func measure(face font.Face, s string) int {
	width := fixed.I(0)
	n := 0
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			adv, _ = face.GlyphAdvance('?')
		}
		width += adv
		n++
	}
	return width.Ceil() + n*letterSpacing
}

// lineHeight approximates CSS "line-height: normal" for the face.
func lineHeight(face font.Face) int {
	m := face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}
