package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// ParseHex parses #rgb, #rrggbb and #rrggbbaa (the leading # is optional).
func ParseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), config.ColorPrefix)

	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]}) + "ff"
	case 6:
		s += "ff"
	case 8:
	default:
		return color.NRGBA{}, false
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

// mustHex is for the built-in palette constants only.
func mustHex(s string) color.NRGBA {
	c, ok := ParseHex(s)
	if !ok {
		panic("render: bad palette color " + s)
	}
	return c
}

// withAlpha returns c with its alpha replaced.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
