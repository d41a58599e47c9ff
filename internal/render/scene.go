package render

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"time"

	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

// Input is everything a wallpaper depends on besides the current instant.
type Input struct {
	TimeZone    string
	SpecialDays []engine.SpecialDay
	Width       int
	Height      int

	// DaysLeftText is the localized "days left" caption.
	DaysLeftText string
}

// Metrics are the size rules derived from the output width.
type Metrics struct {
	Scale    float64
	Tile     int
	Radius   int
	Gap      int
	RowWidth int
	TextSize int
	TextGap  int
	SpanGap  int
	Top      int
}

// TileBox is one day cell placed on the canvas.
type TileBox struct {
	Date   string
	Rect   image.Rectangle
	Radius int
	Color  color.NRGBA
}

// TextRun is a string drawn left to right from (X, Baseline).
type TextRun struct {
	Text     string
	X        int
	Baseline int
	Size     int
	Color    color.NRGBA
}

// GlowLayer is one inset shadow ring along the canvas edges.
type GlowLayer struct {
	Blur   int
	Spread int
	Color  color.NRGBA
}

// Scene is a fully positioned wallpaper, ready to rasterize.
type Scene struct {
	Width      int
	Height     int
	Background color.NRGBA
	Metrics    Metrics
	Stats      engine.YearStats
	Location   *time.Location
	Tiles      []TileBox
	Label      *TextRun
	Text       []TextRun
	Glow       []GlowLayer
}

// ComputeMetrics scales tile, gap and text sizes from the canvas size.
func ComputeMetrics(width, height int) Metrics {
	scale := math.Min(float64(width)/config.ScaleReferenceWidth, config.MaxScale)

	m := Metrics{
		Scale:    scale,
		Tile:     max(config.TileMinSize, roundInt(config.TileBaseSize*scale)),
		Radius:   max(config.TileMinRadius, roundInt(config.TileBaseRadius*scale)),
		Gap:      max(config.GapMin, roundInt(config.GapBase*scale)),
		TextSize: min(config.TextMaxSize, max(config.TextMinSize, roundInt(config.TextBaseSize*scale))),
		TextGap:  max(config.TextGapMin, roundInt(config.TextGapBase*scale)),
		Top:      roundInt(float64(height) * config.TopOffsetRatio),
	}
	m.RowWidth = m.Tile*config.GridColumns + m.Gap*(config.GridColumns-1)
	m.SpanGap = max(config.SpanGapMin, roundInt(float64(m.TextSize)*0.5))
	return m
}

// Compose lays out the wallpaper for the given instant. It is a pure function
// of its arguments: the same (now, in) always yields the same scene.
func Compose(now time.Time, in Input) (Scene, error) {
	loc, _ := engine.ResolveLocation(in.TimeZone)
	local := now.In(loc)

	byDate := engine.BuildSpecialByDate(local, loc, in.SpecialDays)
	stats := engine.GetYearStats(local)
	tiles := engine.BuildYearTiles(local, byDate)
	today, hasToday := engine.TodaySpecial(local, byDate)

	m := ComputeMetrics(in.Width, in.Height)
	scene := Scene{
		Width:      in.Width,
		Height:     in.Height,
		Background: mustHex(config.ColorBackground),
		Metrics:    m,
		Stats:      stats,
		Location:   loc,
	}

	textFace, err := faceFor(m.TextSize)
	if err != nil {
		return Scene{}, err
	}

	caption := in.DaysLeftText
	if caption == "" {
		caption = config.FallbackDaysLeft
	}
	spans := []struct {
		text string
		hex  string
	}{
		{strconv.Itoa(stats.DaysLeft), config.ColorTextStrong},
		{caption, config.ColorTextMuted},
		{config.TextSeparatorDot, config.ColorTextFaint},
		{strconv.Itoa(stats.Percent), config.ColorTextStrong},
		{config.PercentSign, config.ColorTextMuted},
	}

	textWidth := 0
	spanWidths := make([]int, len(spans))
	for i, s := range spans {
		spanWidths[i] = measure(textFace, s.text)
		textWidth += spanWidths[i]
	}
	textWidth += m.SpanGap * (len(spans) - 1)

	// The column is as wide as its widest child and centered on the canvas.
	columnWidth := max(m.RowWidth, textWidth)

	var labelText string
	var labelSize, labelWidth int
	if hasToday && today.Label != "" {
		labelText = today.Label
		labelSize = roundInt(float64(m.TextSize) * config.LabelScale)
		labelFace, err := faceFor(labelSize)
		if err != nil {
			return Scene{}, err
		}
		labelWidth = measure(labelFace, labelText)
		columnWidth = max(columnWidth, labelWidth)
	}
	columnX := (in.Width - columnWidth) / 2

	// Grid rows, the last partial row centered.
	gridX := columnX + (columnWidth-m.RowWidth)/2
	y := m.Top
	scene.Tiles = make([]TileBox, 0, len(tiles))
	for start := 0; start < len(tiles); start += config.GridColumns {
		end := min(start+config.GridColumns, len(tiles))
		n := end - start
		used := n*m.Tile + (n-1)*m.Gap
		x := gridX + (m.RowWidth-used)/2

		for _, tile := range tiles[start:end] {
			c, ok := ParseHex(tile.DisplayColor)
			if !ok {
				c = mustHex(tile.BaseColor)
			}
			scene.Tiles = append(scene.Tiles, TileBox{
				Date:   tile.DateISO,
				Rect:   image.Rect(x, y, x+m.Tile, y+m.Tile),
				Radius: m.Radius,
				Color:  c,
			})
			x += m.Tile + m.Gap
		}
		y += m.Tile
		if end < len(tiles) {
			y += m.Gap
		}
	}
	y += m.TextGap

	if labelText != "" {
		labelFace, _ := faceFor(labelSize)
		c, ok := ParseHex(today.Color)
		if !ok {
			c = mustHex(config.DefaultSpecialColor)
		}
		scene.Label = &TextRun{
			Text:     labelText,
			X:        columnX + (columnWidth-labelWidth)/2,
			Baseline: y + labelFace.Metrics().Ascent.Ceil(),
			Size:     labelSize,
			Color:    c,
		}
		y += lineHeight(labelFace) + m.TextGap
	}

	x := columnX + (columnWidth-textWidth)/2
	baseline := y + textFace.Metrics().Ascent.Ceil()
	for i, s := range spans {
		scene.Text = append(scene.Text, TextRun{
			Text:     s.text,
			X:        x,
			Baseline: baseline,
			Size:     m.TextSize,
			Color:    mustHex(s.hex),
		})
		x += spanWidths[i] + m.SpanGap
	}

	if hasToday && today.IsBirthday {
		if c, ok := ParseHex(today.Color); ok {
			h := float64(in.Height)
			scene.Glow = []GlowLayer{
				{
					Blur:   roundInt(h * config.GlowInnerRatio),
					Spread: roundInt(h * config.GlowInnerSpread),
					Color:  withAlpha(c, config.GlowInnerAlpha),
				},
				{
					Blur:   roundInt(h * config.GlowOuterRatio),
					Spread: roundInt(h * config.GlowOuterSpread),
					Color:  withAlpha(c, config.GlowOuterAlpha),
				},
			}
		}
	}

	return scene, nil
}

// TileAt returns the placed tile for an ISO date.
func (s Scene) TileAt(dateISO string) (TileBox, bool) {
	for _, t := range s.Tiles {
		if t.Date == dateISO {
			return t, true
		}
	}
	return TileBox{}, false
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
