package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// natural parses casual English expressions like "3pm" or "tomorrow 10am".
var natural = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// Midnight truncates t to the start of its calendar day, keeping the
// location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ResolveDate turns a free-form day expression into a concrete calendar
// date (midnight in today's location). Resolution order, first match wins:
//
//  1. "today" / "tomorrow" / "yesterday", case-insensitive
//  2. general date parsing ("2025-04-25", "April 25", ...)
//  3. weekday names, resolving to the next occurrence strictly in the
//     future; a bare weekday never means today
//
// today is passed in by the caller so the function stays a pure one.
func ResolveDate(expr string, today time.Time) (time.Time, error) {
	today = Midnight(today)
	loc := today.Location()

	if strings.TrimSpace(expr) == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrDateNotRecognized)
	}

	switch strings.ToLower(strings.TrimSpace(expr)) {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if t, err := dateparse.ParseIn(expr, loc); err == nil {
		t = t.In(loc)
		// dateparse leaves bare month/day forms like "April 25" at year
		// zero; fill in the current year.
		if t.Year() == 0 {
			t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		}
		return Midnight(t), nil
	}

	if wd, ok := weekdays[strings.ToLower(strings.TrimSpace(expr))]; ok {
		ahead := (int(wd) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrDateNotRecognized, expr)
}

// ParseEventTime parses an absolute or casual timestamp expression
// ("3pm", "tomorrow 10am", "2025-04-20 14:30") relative to now. The result
// is in now's location; expressions carrying an explicit zone are converted.
func ParseEventTime(expr string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrTimeParse)
	}

	// The casual parser matches substrings, so a partial match on an
	// absolute expression like "2025-04-20 14:30" would silently discard
	// the unmatched parts. Only accept a match that consumed the whole
	// expression; everything else goes through the general parser.
	if r, err := natural.Parse(trimmed, now); err == nil && r != nil && strings.TrimSpace(r.Text) == trimmed {
		return r.Time.In(now.Location()), nil
	}

	if t, err := dateparse.ParseIn(trimmed, now.Location()); err == nil {
		t = t.In(now.Location())
		if t.Year() == 0 {
			t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, now.Location())
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrTimeParse, expr)
}
