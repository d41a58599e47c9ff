package engine

import (
	"log/slog"
	"math"
	"time"

	"github.com/tartampluch/go-yeartiles/internal/config"
)

// YearStats summarizes the progress through the year containing "now".
type YearStats struct {
	DaysInYear int `json:"daysInYear"`
	DayOfYear  int `json:"dayOfYear"`
	DaysLeft   int `json:"daysLeft"`
	Percent    int `json:"percent"`
}

// YearTile is one calendar day of the grid. Exactly one of IsPast, IsToday
// and IsFuture is set.
type YearTile struct {
	DateISO      string
	Month        int
	Day          int
	IsPast       bool
	IsToday      bool
	IsFuture     bool
	BaseColor    string
	DisplayColor string
	Special      *SpecialDay
}

// ResolveLocation loads an IANA zone. Unknown or empty names resolve to UTC
// and ok is false.
func ResolveLocation(name string) (loc *time.Location, ok bool) {
	if name == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Debug(config.MsgBadZone,
			config.LogKeyTimeZone, name,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompEngine)
		return time.UTC, false
	}
	return loc, true
}

// NowIn returns the clock's instant expressed in the named zone (UTC if unknown).
func NowIn(clock Clock, timeZone string) time.Time {
	loc, _ := ResolveLocation(timeZone)
	return clock.Now().In(loc)
}

// DaysInYear returns 366 for leap years and 365 otherwise.
func DaysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// GetYearStats computes the year progress of now in its own location.
func GetYearStats(now time.Time) YearStats {
	daysInYear := DaysInYear(now.Year())
	dayOfYear := now.YearDay()

	return YearStats{
		DaysInYear: daysInYear,
		DayOfYear:  dayOfYear,
		DaysLeft:   daysInYear - dayOfYear,
		Percent:    int(math.Round(float64(dayOfYear) / float64(daysInYear) * 100)),
	}
}

// BuildSpecialByDate projects recurring special days onto the year of now.
// Dates that do not exist that year (Feb 29 outside leap years) are dropped.
// Duplicates resolve to the last entry in iteration order.
func BuildSpecialByDate(now time.Time, loc *time.Location, specialDays []SpecialDay) map[string]SpecialDay {
	if loc == nil {
		loc = now.Location()
	}
	year := now.Year()

	byDate := make(map[string]SpecialDay, len(specialDays))
	for _, item := range specialDays {
		date := time.Date(year, time.Month(item.Month), item.Day, 0, 0, 0, 0, loc)
		// time.Date normalizes overflow (Feb 30 -> Mar 2); reject those.
		if date.Year() != year || int(date.Month()) != item.Month || date.Day() != item.Day {
			continue
		}
		byDate[date.Format(config.DateFormatISO)] = item
	}
	return byDate
}

// BuildYearTiles returns one tile per day of the year containing now, from Jan 1.
func BuildYearTiles(now time.Time, specialByDate map[string]SpecialDay) []YearTile {
	year := now.Year()
	loc := now.Location()
	today := now.YearDay()
	total := DaysInYear(year)

	tiles := make([]YearTile, 0, total)
	for i := 0; i < total; i++ {
		date := time.Date(year, time.January, 1+i, 0, 0, 0, 0, loc)
		ordinal := i + 1

		tile := YearTile{
			DateISO:  date.Format(config.DateFormatISO),
			Month:    int(date.Month()),
			Day:      date.Day(),
			IsPast:   ordinal < today,
			IsToday:  ordinal == today,
			IsFuture: ordinal > today,
		}

		switch {
		case tile.IsToday:
			tile.BaseColor = config.ColorToday
		case tile.IsPast:
			tile.BaseColor = config.ColorPast
		default:
			tile.BaseColor = config.ColorFuture
		}

		tile.DisplayColor = tile.BaseColor
		if special, ok := specialByDate[tile.DateISO]; ok {
			s := special
			tile.Special = &s
			tile.DisplayColor = special.Color
		}

		tiles = append(tiles, tile)
	}
	return tiles
}

// TodaySpecial returns the special day falling on now, if any.
func TodaySpecial(now time.Time, specialByDate map[string]SpecialDay) (SpecialDay, bool) {
	s, ok := specialByDate[now.Format(config.DateFormatISO)]
	return s, ok
}

// NextMidnight returns the start of the day after now, in now's location,
// plus a small slack so timers never fire before the date flips.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()).Add(config.MidnightSlack)
}
