package translate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sunday afternoon, mid-March.
var anchor = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func TestResolveWindow_Expressions(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		expression string
		start, end time.Time
	}{
		{"today", day(2026, 3, 15), day(2026, 3, 16)},
		{"yesterday", day(2026, 3, 14), day(2026, 3, 15)},
		{"this_week", day(2026, 3, 9), anchor},
		{"last_week", day(2026, 3, 2), day(2026, 3, 9)},
		{"this_month", day(2026, 3, 1), anchor},
		{"last_month", day(2026, 2, 1), day(2026, 3, 1)},
		{"this_year", day(2026, 1, 1), anchor},
		{"last_7_days", day(2026, 3, 8), anchor},
		{"last_30_days", day(2026, 2, 13), anchor},
	}
	for _, tc := range cases {
		t.Run(tc.expression, func(t *testing.T) {
			w, err := resolveWindow("reported_at", tc.expression, "", "", anchor)
			require.NoError(t, err)
			assert.Equal(t, tc.start, w.Start)
			assert.Equal(t, tc.end, w.End)
			assert.Equal(t, "reported_at", w.Column)
		})
	}
}

func TestResolveWindow_UnknownExpression(t *testing.T) {
	_, err := resolveWindow("reported_at", "fortnight", "", "", anchor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fortnight")
}

func TestResolveWindow_ExplicitDates(t *testing.T) {
	w, err := resolveWindow("reported_at", "", "2026-03-01", "2026-03-10", anchor)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	// A date-only end is inclusive of the named day.
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), w.End)
}

func TestResolveWindow_ExplicitRFC3339(t *testing.T) {
	w, err := resolveWindow("reported_at", "", "2026-03-01T08:00:00Z", "2026-03-01T12:00:00Z", anchor)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, w.End.Sub(w.Start))
}

func TestResolveWindow_InvalidRanges(t *testing.T) {
	_, err := resolveWindow("reported_at", "", "2026-03-10", "", anchor)
	require.Error(t, err, "end missing")

	_, err = resolveWindow("reported_at", "", "2026-03-10", "2026-03-01", anchor)
	require.Error(t, err, "inverted range")

	_, err = resolveWindow("reported_at", "", "03/10/2026", "2026-03-11", anchor)
	require.Error(t, err, "unparseable date")
}

func TestResolveWindow_AnchorsInUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 08:00 on March 16 in Tokyo is still March 15 in UTC.
	local := time.Date(2026, 3, 16, 8, 0, 0, 0, tokyo)

	w, err := resolveWindow("reported_at", "today", "", "", local)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), w.Start)
}

func TestKnownExpressions_Sorted(t *testing.T) {
	exprs := knownExpressions()
	assert.Equal(t, []string{
		"last_30_days", "last_7_days", "last_month", "last_week",
		"this_month", "this_week", "this_year", "today", "yesterday",
	}, exprs)
}

func TestStartOfWeek_Monday(t *testing.T) {
	// anchor is a Sunday; the week started the previous Monday.
	assert.Equal(t, time.Monday, startOfWeek(anchor).Weekday())
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), startOfWeek(anchor))

	monday := time.Date(2026, 3, 9, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), startOfWeek(monday))
}
