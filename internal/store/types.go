package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Observation is the window one locale was resolved to on a tick.
type Observation struct {
	LocaleID   string
	PrayerName string
	Waiting    bool
}

// Transition records that a locale moved from one window to another.
type Transition struct {
	LocaleID        string
	PrayerName      string
	Waiting         bool
	PreviousName    string
	PreviousWaiting bool
	At              time.Time
}

// Notify reports whether subscribers should hear about the transition. Only
// the start of a prayer window is announced, never the waiting period.
func (t Transition) Notify() bool {
	return !t.Waiting
}

func sameWindow(prayerName string, waiting bool, o Observation) bool {
	return prayerName == o.PrayerName && waiting == o.Waiting
}
