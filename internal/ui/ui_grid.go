package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/render"
)

// tileWidget is one rounded day square. Tapping it opens the editor for
// its date; hovering reports the date to the header.
type tileWidget struct {
	widget.BaseWidget
	rect    *canvas.Rectangle
	data    engine.YearTile
	onTap   func(engine.YearTile)
	onHover func(engine.YearTile, bool)
}

var _ desktop.Hoverable = (*tileWidget)(nil)

func newTileWidget(onTap func(engine.YearTile), onHover func(engine.YearTile, bool)) *tileWidget {
	rect := canvas.NewRectangle(color.Transparent)
	rect.CornerRadius = config.UITileRadius
	rect.SetMinSize(fyne.NewSquareSize(config.UITileSize))

	t := &tileWidget{rect: rect, onTap: onTap, onHover: onHover}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tileWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.rect)
}

func (t *tileWidget) set(data engine.YearTile) {
	t.data = data
	t.rect.FillColor = tileColor(data)
	t.rect.Refresh()
}

func (t *tileWidget) Tapped(*fyne.PointEvent) {
	if t.onTap != nil {
		t.onTap(t.data)
	}
}

func (t *tileWidget) MouseIn(*desktop.MouseEvent) {
	if t.onHover != nil {
		t.onHover(t.data, true)
	}
}

func (t *tileWidget) MouseMoved(*desktop.MouseEvent) {}

func (t *tileWidget) MouseOut() {
	if t.onHover != nil {
		t.onHover(t.data, false)
	}
}

// tileColor resolves the display color, falling back to the neutral state
// color when a special day carries an unusable value.
func tileColor(t engine.YearTile) color.Color {
	if c, ok := render.ParseHex(t.DisplayColor); ok {
		return c
	}
	c, _ := render.ParseHex(t.BaseColor)
	return c
}

// yearGrid lays tiles out in fixed columns. Tiles are reused across
// refreshes and only rebuilt when the year length changes.
type yearGrid struct {
	box     *fyne.Container
	tiles   []*tileWidget
	onTap   func(engine.YearTile)
	onHover func(engine.YearTile, bool)
}

func newYearGrid(onTap func(engine.YearTile), onHover func(engine.YearTile, bool)) *yearGrid {
	return &yearGrid{
		box:     container.NewGridWithColumns(config.GridColumns),
		onTap:   onTap,
		onHover: onHover,
	}
}

func (g *yearGrid) update(tiles []engine.YearTile) {
	if len(g.tiles) != len(tiles) {
		g.tiles = make([]*tileWidget, len(tiles))
		objects := make([]fyne.CanvasObject, len(tiles))
		for i := range tiles {
			g.tiles[i] = newTileWidget(g.onTap, g.onHover)
			objects[i] = g.tiles[i]
		}
		g.box.Objects = objects
		g.box.Refresh()
	}
	for i, t := range tiles {
		g.tiles[i].set(t)
	}
}
