// Package termview prints the year grid in a terminal.
package termview

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

const tileGlyph = "■"

// Options configures a terminal preview.
type Options struct {
	TimeZone     string
	SpecialDays  []engine.SpecialDay
	Columns      int
	DaysLeftText string
}

type styles struct {
	strong lipgloss.Style
	muted  lipgloss.Style
	faint  lipgloss.Style
	tiles  map[string]lipgloss.Style
}

func newStyles() *styles {
	base := lipgloss.NewStyle().Padding(0).Margin(0)
	return &styles{
		strong: base.Copy().Foreground(lipgloss.Color(config.ColorTextStrong)).Bold(true),
		muted:  base.Copy().Foreground(lipgloss.Color(config.ColorTextMuted)),
		faint:  base.Copy().Foreground(lipgloss.Color(config.ColorTextFaint)),
		tiles:  map[string]lipgloss.Style{},
	}
}

func (s *styles) tile(hex string) lipgloss.Style {
	if st, ok := s.tiles[hex]; ok {
		return st
	}
	st := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	s.tiles[hex] = st
	return st
}

// Render draws the grid for now, one colored glyph per day, followed by the
// stats line and today's label when there is one.
func Render(now time.Time, opts Options) string {
	loc, _ := engine.ResolveLocation(opts.TimeZone)
	local := now.In(loc)

	byDate := engine.BuildSpecialByDate(local, loc, opts.SpecialDays)
	tiles := engine.BuildYearTiles(local, byDate)
	stats := engine.GetYearStats(local)

	columns := opts.Columns
	if columns <= 0 {
		columns = config.GridColumns
	}
	caption := opts.DaysLeftText
	if caption == "" {
		caption = config.FallbackDaysLeft
	}

	st := newStyles()
	var b strings.Builder

	for i, tile := range tiles {
		if i > 0 {
			if i%columns == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString(st.tile(tile.DisplayColor).Render(tileGlyph))
	}
	b.WriteString("\n\n")

	if today, ok := engine.TodaySpecial(local, byDate); ok && today.Label != "" {
		b.WriteString(st.tile(today.Color).Copy().Bold(true).Render(today.Label))
		b.WriteString("\n")
	}

	b.WriteString(strings.Join([]string{
		st.strong.Render(strconv.Itoa(stats.DaysLeft)),
		st.muted.Render(caption),
		st.faint.Render(config.TextSeparatorDot),
		st.strong.Render(strconv.Itoa(stats.Percent)) + st.muted.Render(config.PercentSign),
	}, " "))
	b.WriteString("\n")

	return b.String()
}
