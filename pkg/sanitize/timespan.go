package sanitize

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"src.exline.sh/pkg/complete"
)

// Timespan is a range of time. A zero bound leaves that side open; the zero
// Timespan covers everything.
type Timespan struct {
	From, To time.Time
}

// Contains reports whether t is within the timespan. A zero t, the time of
// an entry that was never timestamped, is only within the unbounded
// timespan.
func (ts Timespan) Contains(t time.Time) bool {
	if t.IsZero() {
		return ts.From.IsZero() && ts.To.IsZero()
	}
	return (ts.From.IsZero() || !t.Before(ts.From)) &&
		(ts.To.IsZero() || !t.After(ts.To))
}

// Timespan codes accepted by ParseTimespan, with their descriptions.
var timespanCodes = []complete.Item{
	{Text: "0", Description: "Everything"},
	{Text: "1", Description: "Last hour"},
	{Text: "2", Description: "Last two hours"},
	{Text: "3", Description: "Last four hours"},
	{Text: "4", Description: "Today"},
}

// ParseTimespan parses a timespan relative to now. It accepts
//
//	0 to 4      everything, the last one, two or four hours, or today
//	DURATION    the given duration before now, such as "90m"
//	FROM..TO    dates parsed by dateparse; either side may be empty
//	FROM        since a date
func ParseTimespan(s string, now time.Time) (Timespan, error) {
	switch s {
	case "", "0":
		return Timespan{}, nil
	case "1":
		return Timespan{From: now.Add(-time.Hour)}, nil
	case "2":
		return Timespan{From: now.Add(-2 * time.Hour)}, nil
	case "3":
		return Timespan{From: now.Add(-4 * time.Hour)}, nil
	case "4":
		y, m, d := now.Date()
		return Timespan{From: time.Date(y, m, d, 0, 0, 0, 0, now.Location())}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return Timespan{}, invalidTimespan(s)
		}
		return Timespan{From: now.Add(-d)}, nil
	}

	from, to, _ := strings.Cut(s, "..")
	var ts Timespan
	var err error
	if ts.From, err = parseTime(from, now); err != nil {
		return Timespan{}, err
	}
	if ts.To, err = parseTime(to, now); err != nil {
		return Timespan{}, err
	}
	if !ts.From.IsZero() && !ts.To.IsZero() && ts.To.Before(ts.From) {
		return Timespan{}, invalidTimespan(s)
	}
	return ts, nil
}

func parseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseIn(s, now.Location())
	if err != nil {
		return time.Time{}, invalidTimespan(s)
	}
	return t, nil
}

func invalidTimespan(s string) error {
	return fmt.Errorf("E475: Invalid argument: %s", s)
}
