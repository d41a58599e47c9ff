package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// ParsePreset reads a "WIDTHxHEIGHT" preset and clamps both sides.
func ParsePreset(preset string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(preset)), config.PresetSeparator)
	if !ok {
		return 0, 0, fmt.Errorf("%s: %q", config.ErrInvalidPreset, preset)
	}
	width, errW := strconv.Atoi(w)
	height, errH := strconv.Atoi(h)
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%s: %q", config.ErrInvalidPreset, preset)
	}
	return ClampWidth(width), ClampHeight(height), nil
}

// ParseDimension reads the leading integer of raw and clamps it into
// [lo, hi]. Values without a leading integer fall back.
func ParseDimension(raw string, fallback, lo, hi int) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return fallback
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return fallback
	}
	return min(max(v, lo), hi)
}

// ClampWidth bounds a width to the supported range.
func ClampWidth(w int) int {
	return min(max(w, config.MinWidth), config.MaxWidth)
}

// ClampHeight bounds a height to the supported range.
func ClampHeight(h int) int {
	return min(max(h, config.MinHeight), config.MaxHeight)
}
