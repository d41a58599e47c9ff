package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-yeartiles/internal/engine"
)

func TestEncodeCompact(t *testing.T) {
	tests := []struct {
		name string
		in   []engine.SpecialDay
		want string
	}{
		{"empty", nil, ""},
		{"plain", []engine.SpecialDay{{Month: 1, Day: 1, Color: "#ff0000", Label: "New Year"}}, "1-1-ff0000-New%20Year-"},
		{"birthday without label", []engine.SpecialDay{{Month: 3, Day: 14, Color: "#e879f9", IsBirthday: true}}, "3-14-e879f9--b"},
		{"separators escaped", []engine.SpecialDay{{Month: 5, Day: 5, Color: "#000000", Label: "a-b~c"}}, "5-5-000000-a%2Db%7Ec-"},
		{"uri component set", []engine.SpecialDay{{Month: 6, Day: 6, Color: "#111111", Label: "Tom's (1st)! C++"}}, "6-6-111111-Tom's%20(1st)!%20C%2B%2B-"},
		{
			name: "multiple entries",
			in: []engine.SpecialDay{
				{Month: 1, Day: 1, Color: "#ff0000"},
				{Month: 12, Day: 25, Color: "#00ff00", Label: "Xmas", IsBirthday: true},
			},
			want: "1-1-ff0000--~12-25-00ff00-Xmas-b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.EncodeCompact(tt.in))
		})
	}
}

func TestDecodeCompact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []engine.SpecialDay
	}{
		{"empty", "", []engine.SpecialDay{}},
		{"plain", "1-1-ff0000-New%20Year-", []engine.SpecialDay{{Month: 1, Day: 1, Color: "#ff0000", Label: "New Year"}}},
		{"plus stays literal", "1-2-ff0000-C+%2B-", []engine.SpecialDay{{Month: 1, Day: 2, Color: "#ff0000", Label: "C++"}}},
		{"month out of range dropped", "13-1-ff0000--~2-3-00ff00--b", []engine.SpecialDay{{Month: 2, Day: 3, Color: "#00ff00", IsBirthday: true}}},
		{"invalid day of month dropped", "2-30-ff0000--", []engine.SpecialDay{}},
		{"missing color dropped", "1-1---", []engine.SpecialDay{}},
		{"truncated entry dropped", "1", []engine.SpecialDay{}},
		{"bad escape only drops entry", "1-1-ff0000-%zz-~4-4-abcdef--", []engine.SpecialDay{{Month: 4, Day: 4, Color: "#abcdef"}}},
		{"stray separators", "~~3-3-123456--~", []engine.SpecialDay{{Month: 3, Day: 3, Color: "#123456"}}},
		{"non numeric", "x-1-ff0000--", []engine.SpecialDay{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.DecodeCompact(tt.in))
		})
	}
}

// TestCompact_RoundTrip checks decode(encode(x)) == x for valid collections.
func TestCompact_RoundTrip(t *testing.T) {
	in := []engine.SpecialDay{
		{Month: 1, Day: 1, Color: "#ff0000", Label: "New Year"},
		{Month: 2, Day: 29, Color: "#e879f9", Label: "Leap-day ~ party", IsBirthday: true},
		{Month: 7, Day: 14, Color: "#22d3ee", Label: "Fête nationale 100% 🎆"},
		{Month: 12, Day: 31, Color: "#fbbf24"},
	}

	assert.Equal(t, in, engine.DecodeCompact(engine.EncodeCompact(in)))

	withInvalid := append([]engine.SpecialDay{{Month: 13, Day: 1, Color: "#ffffff"}}, in...)
	assert.Equal(t, in, engine.DecodeCompact(engine.EncodeCompact(withInvalid)), "out-of-range entries are dropped")
}
