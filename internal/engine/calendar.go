package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"github.com/tartampluch/go-yeartiles/internal/config"
)

// SummaryFormatter lets callers inject localized event titles.
type SummaryFormatter func(item SpecialDay) string

// DefaultSummary titles an event from its label, falling back to a generic name.
func DefaultSummary(item SpecialDay) string {
	switch {
	case item.IsBirthday && item.Label != "":
		return fmt.Sprintf(config.FallbackBirthday, item.Label)
	case item.Label != "":
		return item.Label
	default:
		return config.FallbackSpecialTitle
	}
}

// BuildCalendar exports special days as an iCalendar feed with one all-day
// event per entry, recurring yearly from the year of now.
// Feb 29 entries start on the next leap year so the first occurrence exists.
func BuildCalendar(now time.Time, specialDays []SpecialDay, format SummaryFormatter) ([]byte, error) {
	if format == nil {
		format = DefaultSummary
	}

	specials := SanitizeSpecialDays(specialDays)
	if len(specials) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, item := range specials {
		start := firstOccurrence(now.Year(), item)

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, item.Month, item.Day, colorSlug(item.Color), config.ICalDomain))
		event.Props.SetText(config.PropSummary, format(item))
		event.Props.Set(dtStampProp)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(start)
		event.Props.Set(dtStartProp)

		event.Props.SetRecurrenceRule(&rrule.ROption{Freq: rrule.YEARLY})

		cal.Children = append(cal.Children, event.Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug("Calendar built",
		config.LogKeyCount, len(specials),
		config.LogKeyComponent, config.CompEngine)
	return buf.Bytes(), nil
}

func firstOccurrence(year int, item SpecialDay) time.Time {
	for y := year; y < year+8; y++ {
		d := time.Date(y, time.Month(item.Month), item.Day, 0, 0, 0, 0, time.UTC)
		if int(d.Month()) == item.Month {
			return d
		}
	}
	return time.Date(year, time.Month(item.Month), 1, 0, 0, 0, 0, time.UTC)
}

func colorSlug(color string) string {
	if len(color) > 0 && color[:1] == config.ColorPrefix {
		return color[1:]
	}
	return color
}
