// Package prayer resolves which named prayer window a time of day falls in.
//
// Tables are static configuration: an insertion-ordered list of named
// thresholds for one locale. Nothing here reads the clock; callers pass the
// time of day they want resolved and re-invoke on whatever cadence they need.
package prayer

import (
	"errors"
	"fmt"
	"time"

	"ibadah-companion-backend/internal/parse"
)

var (
	// ErrEmptyTable is returned when a table has no entries.
	ErrEmptyTable = errors.New("no prayer entries supplied")
	// ErrMalformedEntry is returned when an entry cannot be parsed.
	ErrMalformedEntry = errors.New("malformed prayer entry")
)

const minutesPerDay = 24 * 60

// TimeOfDay is an hour and minute on a recurring daily cycle.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// TimeOfDayOf returns the wall-clock hour and minute of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	c, err := parse.ParseClock(s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Hour: c.Hour, Minute: c.Minute}, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Entry is one named threshold in a table.
type Entry struct {
	Name string
	At   TimeOfDay
}

// Table is an insertion-ordered list of entries. The declared order need not
// be chronological.
type Table []Entry

// Pair is a raw name and "HH:MM" value as declared in configuration.
type Pair struct {
	Name string
	Time string
}

// ParseTable builds a table from raw pairs, keeping declared order.
func ParseTable(pairs []Pair) (Table, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyTable
	}

	table := make(Table, 0, len(pairs))
	for _, p := range pairs {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: entry with time %q has no name", ErrMalformedEntry, p.Time)
		}
		at, err := ParseTimeOfDay(p.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedEntry, p.Name, err)
		}
		table = append(table, Entry{Name: p.Name, At: at})
	}
	return table, nil
}
