package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-yeartiles/internal/config"
)

// ImportVCard turns the BDAY fields of a vCard stream into birthday special days.
// Malformed cards and unparseable dates are skipped; the result is sorted.
func ImportVCard(ctx context.Context, r io.Reader) ([]SpecialDay, error) {
	start := time.Now()
	src := &stickyReader{r: r}
	decoder := vcard.NewDecoder(src)
	stats := struct{ processed, withBday int }{}
	var specials []SpecialDay

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if src.err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, src.err)
		}
		if err != nil {
			// Log error but continue to next card to maximize data recovery
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, _, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.withBday++

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Name(); n != nil && (n.GivenName != "" || n.FamilyName != "") {
			name = joinName(n.GivenName, n.FamilyName)
		}

		specials = UpsertSpecialDay(specials, SpecialDay{
			Month:      int(birthDate.Month()),
			Day:        birthDate.Day(),
			Color:      config.DefaultSpecialColor,
			Label:      name,
			IsBirthday: true,
		}, nil)
	}

	slog.Info(config.MsgImportSuccess,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyCount, stats.processed,
		config.LogKeyFound, stats.withBday,
		config.LogKeyDuration, time.Since(start).Milliseconds())

	if specials == nil {
		specials = []SpecialDay{}
	}
	return SanitizeSpecialDays(specials), nil
}

// stickyReader remembers the first non-EOF read error so a failing stream
// ends the import instead of being retried card after card.
type stickyReader struct {
	r   io.Reader
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && s.err == nil {
		s.err = err
	}
	return n, err
}

func joinName(given, family string) string {
	switch {
	case given == "":
		return family
	case family == "":
		return given
	default:
		return given + " " + family
	}
}

// parseDate handles the vCard BDAY formats. Year-less dates are placed in a
// leap year so --02-29 survives.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// ImportVCardFile reads birthdays from a local .vcf file.
func ImportVCardFile(ctx context.Context, path string) ([]SpecialDay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ImportVCard(ctx, f)
}

// ImportVCardURL downloads a vCard collection and reads its birthdays.
func ImportVCardURL(ctx context.Context, fetcher VCardFetcher, targetURL, user, pass string) ([]SpecialDay, error) {
	if fetcher == nil {
		return nil, errors.New(config.ErrFetcherMissing)
	}
	rc, err := fetcher.Fetch(ctx, targetURL, user, pass)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = rc.Close() }()
	return ImportVCard(ctx, rc)
}
