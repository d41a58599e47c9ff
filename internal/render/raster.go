package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"time"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Rasterize paints a composed scene. Order: background, glow, tiles, text.
func Rasterize(scene Scene) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, scene.Width, scene.Height))
	fill(img, scene.Background)

	for _, layer := range scene.Glow {
		paintInsetGlow(img, layer)
	}

	for _, tile := range scene.Tiles {
		fillRoundedRect(img, tile.Rect, tile.Radius, tile.Color)
	}

	if scene.Label != nil {
		if err := drawRun(img, *scene.Label); err != nil {
			return nil, err
		}
	}
	for _, run := range scene.Text {
		if err := drawRun(img, run); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// EncodePNG rasterizes the scene and returns PNG bytes.
func EncodePNG(scene Scene) ([]byte, error) {
	img, err := Rasterize(scene)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRenderEncode, err)
	}
	return buf.Bytes(), nil
}

// Render composes and encodes a wallpaper in one call.
func Render(now time.Time, in Input) ([]byte, error) {
	start := time.Now()

	scene, err := Compose(now, in)
	if err != nil {
		return nil, err
	}
	data, err := EncodePNG(scene)
	if err != nil {
		return nil, err
	}

	slog.Debug(config.MsgRenderDone,
		config.LogKeyComponent, config.CompRender,
		config.LogKeyWidth, in.Width,
		config.LogKeyHeight, in.Height,
		config.LogKeySizeBytes, len(data),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return data, nil
}

func fill(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// blend composites c over the pixel at (x, y) with extra coverage in [0,1].
func blend(img *image.NRGBA, x, y int, c color.NRGBA, coverage float64) {
	if !(image.Point{X: x, Y: y}).In(img.Rect) {
		return
	}
	a := float64(c.A) / 255 * coverage
	if a <= 0 {
		return
	}
	if a >= 1 {
		img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		return
	}
	dst := img.NRGBAAt(x, y)
	mix := func(s, d uint8) uint8 {
		return uint8(math.Round(float64(s)*a + float64(d)*(1-a)))
	}
	img.SetNRGBA(x, y, color.NRGBA{
		R: mix(c.R, dst.R),
		G: mix(c.G, dst.G),
		B: mix(c.B, dst.B),
		A: 255,
	})
}

// fillRoundedRect paints r with anti-aliased corners of the given radius.
func fillRoundedRect(img *image.NRGBA, r image.Rectangle, radius int, c color.NRGBA) {
	rad := float64(min(radius, r.Dx()/2, r.Dy()/2))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			px := float64(x) + 0.5
			py := float64(y) + 0.5

			// Nearest corner circle center, if the pixel lies in a corner square.
			cx := px
			cy := py
			if px < float64(r.Min.X)+rad {
				cx = float64(r.Min.X) + rad
			} else if px > float64(r.Max.X)-rad {
				cx = float64(r.Max.X) - rad
			}
			if py < float64(r.Min.Y)+rad {
				cy = float64(r.Min.Y) + rad
			} else if py > float64(r.Max.Y)-rad {
				cy = float64(r.Max.Y) - rad
			}

			coverage := 1.0
			if cx != px && cy != py {
				d := math.Hypot(px-cx, py-cy)
				coverage = math.Max(0, math.Min(1, rad-d+0.5))
			}
			blend(img, x, y, c, coverage)
		}
	}
}

// paintInsetGlow approximates a CSS inset box-shadow: the region outside the
// canvas shrunk by Spread, blurred with a gaussian of sigma Blur/2.
func paintInsetGlow(img *image.NRGBA, layer GlowLayer) {
	b := img.Bounds()
	maxDist := (min(b.Dx(), b.Dy()) + 1) / 2
	sigma := math.Max(float64(layer.Blur)/2, 0.5)

	intensity := make([]float64, maxDist+1)
	for d := range intensity {
		intensity[d] = 0.5 * math.Erfc((float64(d)+0.5-float64(layer.Spread))/(sigma*math.Sqrt2))
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := min(x-b.Min.X, y-b.Min.Y, b.Max.X-1-x, b.Max.Y-1-y)
			if d > maxDist {
				d = maxDist
			}
			if v := intensity[d]; v > 0.001 {
				blend(img, x, y, layer.Color, v)
			}
		}
	}
}

// drawRun draws text glyph by glyph to apply letter spacing.
func drawRun(img *image.NRGBA, run TextRun) error {
	face, err := faceFor(run.Size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(run.Color),
		Face: face,
		Dot:  fixed.P(run.X, run.Baseline),
	}
	for _, r := range run.Text {
		d.DrawString(string(r))
		d.Dot.X += fixed.I(letterSpacing)
	}
	return nil
}
