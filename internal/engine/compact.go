package engine

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// labelEscaper turns url.QueryEscape output into encodeURIComponent output,
// then escapes the two characters used as field and entry separators.
var labelEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
	"-", "%2D",
	"~", "%7E",
)

// EncodeCompact serializes special days for the "s" query parameter:
// month-day-colorHex-label-flag, entries joined by "~".
func EncodeCompact(specialDays []SpecialDay) string {
	entries := make([]string, 0, len(specialDays))
	for _, item := range specialDays {
		label := ""
		if item.Label != "" {
			label = labelEscaper.Replace(url.QueryEscape(item.Label))
		}
		flag := ""
		if item.IsBirthday {
			flag = config.CompactBirthday
		}

		entries = append(entries, strings.Join([]string{
			strconv.Itoa(item.Month),
			strconv.Itoa(item.Day),
			strings.Replace(item.Color, config.ColorPrefix, "", 1),
			label,
			flag,
		}, config.CompactFieldSep))
	}
	return strings.Join(entries, config.CompactEntrySep)
}

// DecodeCompact reverses EncodeCompact. Entries with an out-of-range date,
// a missing color or an undecodable label are dropped individually.
func DecodeCompact(compact string) []SpecialDay {
	parsed := []SpecialDay{}
	for _, entry := range strings.Split(compact, config.CompactEntrySep) {
		if entry == "" {
			continue
		}
		if item, ok := decodeCompactEntry(entry); ok {
			parsed = append(parsed, item)
		}
	}
	return SanitizeSpecialDays(parsed)
}

func decodeCompactEntry(entry string) (SpecialDay, bool) {
	fields := strings.Split(entry, config.CompactFieldSep)
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	month, err := strconv.Atoi(field(0))
	if err != nil {
		return SpecialDay{}, false
	}
	day, err := strconv.Atoi(field(1))
	if err != nil {
		return SpecialDay{}, false
	}
	if field(2) == "" {
		return SpecialDay{}, false
	}

	item := SpecialDay{
		Month:      month,
		Day:        day,
		Color:      config.ColorPrefix + field(2),
		IsBirthday: field(4) == config.CompactBirthday,
	}
	if raw := field(3); raw != "" {
		// PathUnescape keeps "+" literal, like decodeURIComponent.
		label, err := url.PathUnescape(raw)
		if err != nil {
			return SpecialDay{}, false
		}
		item.Label = label
	}
	return item, item.Valid()
}
