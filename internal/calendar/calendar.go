// Package calendar turns iCalendar feeds into busy-time constraints.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/scheduler"
)

// ErrEmptySource is returned when no calendar source is configured.
var ErrEmptySource = errors.New("calendar source is empty")

// Load reads events from an .ics file path or an http(s) URL and returns
// those overlapping [windowStart, windowEnd) as constraints.
// Floating times are read in windowStart's location.
func Load(ctx context.Context, source string, windowStart, windowEnd time.Time) ([]scheduler.Constraint, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	r, err := open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	constraints, err := Decode(r, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	logger.Debug("calendar loaded", "source", source, "events", len(constraints))
	return constraints, nil
}

// Decode parses an iCalendar stream. Events without a usable start or end are skipped.
func Decode(r io.Reader, windowStart, windowEnd time.Time) ([]scheduler.Constraint, error) {
	loc := windowStart.Location()
	dec := ical.NewDecoder(r)

	var constraints []scheduler.Constraint
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent {
				continue
			}
			event := ical.Event{Component: component}

			start, err := event.DateTimeStart(loc)
			if err != nil {
				logger.Debug("skipping event without start", "error", err)
				continue
			}
			end, err := event.DateTimeEnd(loc)
			if err != nil || !end.After(start) {
				logger.Debug("skipping event without usable end", "start", start)
				continue
			}

			if !start.Before(windowEnd) || !end.After(windowStart) {
				continue
			}

			summary, _ := event.Props.Text(ical.PropSummary)
			constraints = append(constraints, scheduler.Constraint{
				Start: start,
				End:   end,
				Label: summary,
			})
		}
	}

	return constraints, nil
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
