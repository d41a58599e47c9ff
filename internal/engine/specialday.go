package engine

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// SpecialDay is a recurring, year-less calendar date marked by the user.
type SpecialDay struct {
	Month      int    `json:"month"`
	Day        int    `json:"day"`
	Color      string `json:"color"`
	Label      string `json:"label,omitempty"`
	IsBirthday bool   `json:"isBirthday,omitempty"`
}

// MonthDay identifies a SpecialDay inside a collection.
type MonthDay struct {
	Month int
	Day   int
}

// Key returns the (month, day) identity of the entry.
func (s SpecialDay) Key() MonthDay {
	return MonthDay{Month: s.Month, Day: s.Day}
}

// Valid reports whether month/day name a real date in a leap year and a color is set.
// Feb 29 is accepted; Feb 30 and Apr 31 are not.
func (s SpecialDay) Valid() bool {
	if s.Color == "" || s.Month < 1 || s.Month > 12 || s.Day < 1 {
		return false
	}
	return s.Day <= daysInMonth(config.DefaultLeapYear, time.Month(s.Month))
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// normalize trims the free-text fields and bounds the label length.
func (s SpecialDay) normalize() SpecialDay {
	s.Color = strings.TrimSpace(s.Color)
	s.Label = strings.TrimSpace(s.Label)
	if utf8.RuneCountInString(s.Label) > config.MaxLabelLength {
		s.Label = string([]rune(s.Label)[:config.MaxLabelLength])
	}
	return s
}

// SanitizeSpecialDays drops invalid entries and keeps one entry per (month, day).
// A later duplicate replaces the earlier one in place.
func SanitizeSpecialDays(in []SpecialDay) []SpecialDay {
	out := make([]SpecialDay, 0, len(in))
	index := make(map[MonthDay]int, len(in))

	for _, item := range in {
		item = item.normalize()
		if !item.Valid() {
			continue
		}
		if i, ok := index[item.Key()]; ok {
			out[i] = item
			continue
		}
		index[item.Key()] = len(out)
		out = append(out, item)
	}
	return out
}

// SortSpecialDays orders entries by month then day, in place.
func SortSpecialDays(list []SpecialDay) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Month != list[j].Month {
			return list[i].Month < list[j].Month
		}
		return list[i].Day < list[j].Day
	})
}

// UpsertSpecialDay inserts item, replacing any entry on the same date.
// When replacing is set and differs from the item's date (the user moved an
// existing entry), the entry at the old date is removed as well.
// The returned slice is a sorted copy.
func UpsertSpecialDay(list []SpecialDay, item SpecialDay, replacing *MonthDay) []SpecialDay {
	item = item.normalize()
	out := make([]SpecialDay, 0, len(list)+1)
	for _, existing := range list {
		if existing.Key() == item.Key() {
			continue
		}
		if replacing != nil && existing.Key() == *replacing {
			continue
		}
		out = append(out, existing)
	}
	out = append(out, item)
	SortSpecialDays(out)
	return out
}

// RemoveSpecialDay returns a copy of list without the entry on month/day.
func RemoveSpecialDay(list []SpecialDay, month, day int) []SpecialDay {
	out := make([]SpecialDay, 0, len(list))
	for _, existing := range list {
		if existing.Month == month && existing.Day == day {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// FindSpecialDay returns the entry on month/day, if any.
func FindSpecialDay(list []SpecialDay, month, day int) (SpecialDay, bool) {
	for _, existing := range list {
		if existing.Month == month && existing.Day == day {
			return existing, true
		}
	}
	return SpecialDay{}, false
}

// -----------------------------------------------------------------------------
// Lenient JSON decoding
// -----------------------------------------------------------------------------

// ParseSpecialDaysJSON decodes a JSON array of special days.
// Malformed input yields an empty list rather than an error.
func ParseSpecialDaysJSON(raw string) []SpecialDay {
	if raw == "" {
		return []SpecialDay{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return []SpecialDay{}
	}
	return ParseSpecialDays(v)
}

// ParseSpecialDays converts an already decoded JSON value into sanitized entries.
// Non-array values give an empty list; each element is validated on its own.
// Numbers are truncated toward zero and a legacy "dateISO" field is accepted
// when month/day are absent.
func ParseSpecialDays(v any) []SpecialDay {
	items, ok := v.([]any)
	if !ok {
		return []SpecialDay{}
	}

	parsed := make([]SpecialDay, 0, len(items))
	for _, raw := range items {
		if item, ok := parseSpecialEntry(raw); ok {
			parsed = append(parsed, item)
		}
	}
	return SanitizeSpecialDays(parsed)
}

func parseSpecialEntry(raw any) (SpecialDay, bool) {
	record, ok := raw.(map[string]any)
	if !ok {
		return SpecialDay{}, false
	}

	color, _ := record["color"].(string)
	if color == "" {
		return SpecialDay{}, false
	}
	label, _ := record["label"].(string)
	isBirthday, _ := record["isBirthday"].(bool)

	item := SpecialDay{
		Month:      truncInt(record["month"]),
		Day:        truncInt(record["day"]),
		Color:      color,
		Label:      label,
		IsBirthday: isBirthday,
	}
	if item.Valid() {
		return item, true
	}

	// Legacy shape: {"dateISO":"2024-12-25", ...}
	if iso, ok := record["dateISO"].(string); ok {
		if t, err := time.Parse(config.DateFormatISO, iso); err == nil {
			item.Month = int(t.Month())
			item.Day = t.Day()
			return item, true
		}
	}
	return SpecialDay{}, false
}

func truncInt(v any) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}
