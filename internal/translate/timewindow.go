package translate

import (
	"fmt"
	"sort"
	"time"

	"labintel/internal/domain"
)

// windowFn resolves a relative expression into a half-open UTC interval
// anchored at asOf.
type windowFn func(asOf time.Time) (start, end time.Time)

var windowFns = map[string]windowFn{
	"today": func(t time.Time) (time.Time, time.Time) {
		s := startOfDay(t)
		return s, s.AddDate(0, 0, 1)
	},
	"yesterday": func(t time.Time) (time.Time, time.Time) {
		s := startOfDay(t).AddDate(0, 0, -1)
		return s, s.AddDate(0, 0, 1)
	},
	"this_week": func(t time.Time) (time.Time, time.Time) {
		return startOfWeek(t), t
	},
	"last_week": func(t time.Time) (time.Time, time.Time) {
		e := startOfWeek(t)
		return e.AddDate(0, 0, -7), e
	},
	"this_month": func(t time.Time) (time.Time, time.Time) {
		return startOfMonth(t), t
	},
	"last_month": func(t time.Time) (time.Time, time.Time) {
		e := startOfMonth(t)
		return e.AddDate(0, -1, 0), e
	},
	"this_year": func(t time.Time) (time.Time, time.Time) {
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC), t
	},
	"last_7_days": func(t time.Time) (time.Time, time.Time) {
		return startOfDay(t).AddDate(0, 0, -7), t
	},
	"last_30_days": func(t time.Time) (time.Time, time.Time) {
		return startOfDay(t).AddDate(0, 0, -30), t
	},
}

// knownExpressions lists the supported relative expressions, sorted, for the
// prompt contract and validation messages.
func knownExpressions() []string {
	out := make([]string, 0, len(windowFns))
	for k := range windowFns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// resolveWindow turns a candidate time spec into a concrete UTC window
// anchored at asOf. Either expression or an explicit start/end pair must be
// given; explicit dates accept RFC 3339 or plain YYYY-MM-DD (end date is
// exclusive-next-day so the named day is fully included).
func resolveWindow(column, expression, startStr, endStr string, asOf time.Time) (*domain.TimeWindow, error) {
	asOf = asOf.UTC()

	if expression != "" {
		fn, ok := windowFns[expression]
		if !ok {
			return nil, fmt.Errorf("unknown time expression %q", expression)
		}
		start, end := fn(asOf)
		return &domain.TimeWindow{Column: column, Start: start, End: end}, nil
	}

	if startStr == "" || endStr == "" {
		return nil, fmt.Errorf("time spec on %q needs an expression or an explicit start and end", column)
	}
	start, _, err := parseDate(startStr)
	if err != nil {
		return nil, fmt.Errorf("time start: %w", err)
	}
	end, dateOnly, err := parseDate(endStr)
	if err != nil {
		return nil, fmt.Errorf("time end: %w", err)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return nil, fmt.Errorf("time range on %q is empty", column)
	}
	return &domain.TimeWindow{Column: column, Start: start, End: end}, nil
}

func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true, nil
	}
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), false, nil
	}
	return time.Time{}, false, fmt.Errorf("cannot parse %q as YYYY-MM-DD or RFC 3339", s)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns the most recent Monday at 00:00 UTC.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
