package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreviousMonth(t *testing.T) {
	cases := []struct {
		now         time.Time
		expectStart time.Time
		expectEnd   time.Time
	}{
		{
			now:         time.Date(2025, time.May, 15, 0, 0, 0, 0, Location),
			expectStart: time.Date(2025, time.April, 1, 0, 0, 0, 0, Location),
			expectEnd:   time.Date(2025, time.April, 30, 0, 0, 0, 0, Location),
		},
		{
			// year rollover
			now:         time.Date(2025, time.January, 3, 12, 30, 0, 0, Location),
			expectStart: time.Date(2024, time.December, 1, 0, 0, 0, 0, Location),
			expectEnd:   time.Date(2024, time.December, 31, 0, 0, 0, 0, Location),
		},
		{
			// previous month shorter than current one
			now:         time.Date(2025, time.March, 31, 0, 0, 0, 0, Location),
			expectStart: time.Date(2025, time.February, 1, 0, 0, 0, 0, Location),
			expectEnd:   time.Date(2025, time.February, 28, 0, 0, 0, 0, Location),
		},
		{
			// leap year february
			now:         time.Date(2024, time.March, 10, 0, 0, 0, 0, Location),
			expectStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, Location),
			expectEnd:   time.Date(2024, time.February, 29, 0, 0, 0, 0, Location),
		},
	}

	for _, test := range cases {
		start, end := PreviousMonth(test.now)
		require.Equal(t, test.expectStart, start)
		require.Equal(t, test.expectEnd, end)
	}
}

func TestPreviousMonthForeignZone(t *testing.T) {
	// a UTC instant late on the last day of the month is still "next month"
	// in Madrid, so the window must be computed after conversion.
	utc := time.Date(2025, time.April, 30, 23, 30, 0, 0, time.UTC)

	start, end := PreviousMonth(utc)
	require.Equal(t, "2025-04-01", FormatDay(start))
	require.Equal(t, "2025-04-30", FormatDay(end))
}
