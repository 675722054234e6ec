package prayer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTable(t *testing.T, pairs ...Pair) Table {
	t.Helper()
	table, err := ParseTable(pairs)
	require.NoError(t, err)
	return table
}

func tod(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func chronological(t *testing.T) Table {
	return mustTable(t,
		Pair{"A", "04:00"},
		Pair{"B", "12:00"},
		Pair{"C", "15:00"},
		Pair{"D", "18:00"},
		Pair{"E", "19:00"},
	)
}

func TestResolve(t *testing.T) {
	table := chronological(t)

	testCases := []struct {
		now      string
		expected Result
		waiting  bool
	}{
		{"00:00", Result{CurrentLabel: "waiting for A", NextLabel: "A", NextTime: "04:00"}, true},
		{"03:00", Result{CurrentLabel: "waiting for A", NextLabel: "A", NextTime: "04:00"}, true},
		{"03:59", Result{CurrentLabel: "waiting for A", NextLabel: "A", NextTime: "04:00"}, true},
		{"04:00", Result{CurrentLabel: "A", NextLabel: "B", NextTime: "12:00"}, false},
		{"11:59", Result{CurrentLabel: "A", NextLabel: "B", NextTime: "12:00"}, false},
		{"12:00", Result{CurrentLabel: "B", NextLabel: "C", NextTime: "15:00"}, false},
		{"17:59", Result{CurrentLabel: "C", NextLabel: "D", NextTime: "18:00"}, false},
		{"18:30", Result{CurrentLabel: "D", NextLabel: "E", NextTime: "19:00"}, false},
		{"19:00", Result{CurrentLabel: "E", NextLabel: "A", NextTime: "04:00"}, false},
		{"23:30", Result{CurrentLabel: "E", NextLabel: "A", NextTime: "04:00"}, false},
		{"23:59", Result{CurrentLabel: "E", NextLabel: "A", NextTime: "04:00"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.now, func(t *testing.T) {
			w, err := Resolve(tod(t, tc.now), table)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, w.Result())
			assert.Equal(t, tc.waiting, w.Waiting)
		})
	}
}

func TestResolve_EveryMinuteSelectsOneWindow(t *testing.T) {
	table := chronological(t)
	for m := 0; m < minutesPerDay; m++ {
		now := TimeOfDay{Hour: m / 60, Minute: m % 60}
		w, err := Resolve(now, table)
		require.NoError(t, err)

		if w.Waiting {
			assert.Less(t, now.Minutes(), w.Current.At.Minutes())
			continue
		}
		assert.GreaterOrEqual(t, now.Minutes(), w.Current.At.Minutes())
		if w.Next.At.Minutes() > w.Current.At.Minutes() {
			assert.Less(t, now.Minutes(), w.Next.At.Minutes())
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	table := chronological(t)
	now := tod(t, "15:45")

	first, err := Resolve(now, table)
	require.NoError(t, err)
	second, err := Resolve(now, table)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolve_SortsDeclaredOrder(t *testing.T) {
	declared := mustTable(t, Pair{"B", "12:00"}, Pair{"A", "04:00"})
	ordered := mustTable(t, Pair{"A", "04:00"}, Pair{"B", "12:00"})

	for _, now := range []string{"00:00", "04:00", "08:00", "12:00", "23:59"} {
		got, err := Resolve(tod(t, now), declared)
		require.NoError(t, err)
		want, err := Resolve(tod(t, now), ordered)
		require.NoError(t, err)
		assert.Equal(t, want, got, "now=%s", now)
	}

	// The caller's table is left in declared order.
	assert.Equal(t, "B", declared[0].Name)
}

func TestResolve_TiesKeepDeclaredOrder(t *testing.T) {
	table := mustTable(t, Pair{"X", "12:00"}, Pair{"Y", "12:00"}, Pair{"Z", "18:00"})

	w, err := Resolve(tod(t, "12:00"), table)
	require.NoError(t, err)
	assert.Equal(t, "Y", w.Current.Name)
	assert.Equal(t, "Z", w.Next.Name)

	w, err = Resolve(tod(t, "11:00"), table)
	require.NoError(t, err)
	assert.True(t, w.Waiting)
	assert.Equal(t, "X", w.Current.Name)
}

func TestResolve_SingleEntry(t *testing.T) {
	table := mustTable(t, Pair{"Only", "05:00"})

	w, err := Resolve(tod(t, "06:00"), table)
	require.NoError(t, err)
	assert.Equal(t, Result{CurrentLabel: "Only", NextLabel: "Only", NextTime: "05:00"}, w.Result())
}

func TestResolve_EmptyTable(t *testing.T) {
	_, err := Resolve(tod(t, "12:00"), nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Resolve(tod(t, "12:00"), Table{})
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestParseTable(t *testing.T) {
	_, err := ParseTable(nil)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = ParseTable([]Pair{{"Fajr", "4 o'clock"}})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = ParseTable([]Pair{{"", "04:00"}})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = ParseTable([]Pair{{"Isha", "7:08 PM"}})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = ParseTable([]Pair{{"Fajr", "04:40"}, {"Isha", "07:08 am"}})
	assert.ErrorIs(t, err, ErrMalformedEntry)

	table, err := ParseTable([]Pair{{"Isha", "19:08"}, {"Fajr", "04:40 (WIB)"}})
	require.NoError(t, err)
	assert.Equal(t, Table{
		{Name: "Isha", At: TimeOfDay{Hour: 19, Minute: 8}},
		{Name: "Fajr", At: TimeOfDay{Hour: 4, Minute: 40}},
	}, table)
	assert.Equal(t, "04:40", table[1].At.String())
}

func TestMinutesUntilNext(t *testing.T) {
	table := chronological(t)

	now := tod(t, "17:59")
	w, err := Resolve(now, table)
	require.NoError(t, err)
	assert.Equal(t, 1, w.MinutesUntilNext(now))

	now = tod(t, "23:30")
	w, err = Resolve(now, table)
	require.NoError(t, err)
	assert.Equal(t, 4*60+30, w.MinutesUntilNext(now))

	now = tod(t, "03:00")
	w, err = Resolve(now, table)
	require.NoError(t, err)
	assert.Equal(t, 60, w.MinutesUntilNext(now))
}

func TestTimeOfDayOf(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	instant := time.Date(2024, 7, 8, 22, 15, 30, 0, time.UTC)

	assert.Equal(t, TimeOfDay{Hour: 22, Minute: 15}, TimeOfDayOf(instant))
	assert.Equal(t, TimeOfDay{Hour: 5, Minute: 15}, TimeOfDayOf(instant.In(wib)))
	assert.Equal(t, "05:15", TimeOfDayOf(instant.In(wib)).String())
}
