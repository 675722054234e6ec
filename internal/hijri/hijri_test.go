package hijri

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTime(t *testing.T) {
	testCases := []struct {
		gregorian string
		expected  Date
	}{
		{"2000-01-01", Date{Year: 1420, Month: 9, Day: 24}},
		{"2024-07-07", Date{Year: 1445, Month: 12, Day: 30}},
		{"2024-07-08", Date{Year: 1446, Month: 1, Day: 1}},
		{"2025-03-01", Date{Year: 1446, Month: 9, Day: 1}},
		{"2025-03-30", Date{Year: 1446, Month: 9, Day: 30}},
		{"2025-03-31", Date{Year: 1446, Month: 10, Day: 1}},
		{"2025-06-06", Date{Year: 1446, Month: 12, Day: 9}},
		{"2026-10-19", Date{Year: 1448, Month: 5, Day: 7}},
	}

	for _, tc := range testCases {
		t.Run(tc.gregorian, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tc.gregorian)
			require.NoError(t, err)
			d, err := FromTime(day)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d)
		})
	}
}

func TestFromTime_UsesLocalCalendarDay(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	// 2024-07-07 20:00 UTC is already 2024-07-08 in Jakarta.
	instant := time.Date(2024, 7, 7, 20, 0, 0, 0, time.UTC)

	d, err := FromTime(instant)
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 1445, Month: 12, Day: 30}, d)

	d, err = FromTime(instant.In(wib))
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 1446, Month: 1, Day: 1}, d)
}

func TestFromTime_BeforeEpoch(t *testing.T) {
	d, err := FromTime(time.Date(622, 7, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 1, Month: 1, Day: 1}, d)

	_, err = FromTime(time.Date(622, 7, 18, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = FromTime(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDate_Time(t *testing.T) {
	d := Date{Year: 1446, Month: 1, Day: 1}
	assert.Equal(t, time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC), d.Time())

	d = Date{Year: 1446, Month: 9, Day: 1}
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), d.Time())
}

func TestRoundTrip(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3*366; i++ {
		day := start.AddDate(0, 0, i)
		d, err := FromTime(day)
		require.NoError(t, err)
		require.GreaterOrEqual(t, d.Day, 1)
		require.LessOrEqual(t, d.Day, DaysInMonth(d.Year, d.Month))
		require.Equal(t, day, d.Time(), "round trip of %s via %s", day.Format("2006-01-02"), d)
	}
}

func TestNew(t *testing.T) {
	d, err := New(1446, 9, 30)
	require.NoError(t, err)
	assert.Equal(t, "30 Ramadan 1446 H", d.Format())

	_, err = New(1446, 13, 1)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = New(1446, 12, 30)
	assert.ErrorIs(t, err, ErrInvalidDate, "1446 is not a leap year")

	_, err = New(1445, 12, 30)
	assert.NoError(t, err)

	_, err = New(0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = New(MaxYear+1, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "7 Jumadil Awal 1448 H", Date{Year: 1448, Month: 5, Day: 7}.Format())
	assert.Equal(t, "1448-05-07", Date{Year: 1448, Month: 5, Day: 7}.String())
	assert.Equal(t, "", Date{}.MonthName())
}

func TestLeapYear(t *testing.T) {
	assert.True(t, LeapYear(1445))
	assert.False(t, LeapYear(1446))
	assert.True(t, LeapYear(1447))
	assert.Equal(t, 30, DaysInMonth(1445, 12))
	assert.Equal(t, 29, DaysInMonth(1446, 12))
	assert.Equal(t, 30, DaysInMonth(1446, 9))
	assert.Equal(t, 29, DaysInMonth(1446, 2))
}
