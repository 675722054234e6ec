package prayer

import "sort"

// Window is the resolved position of a time of day within a table.
//
// When Waiting is true the time is before the first threshold of the day and
// Current names that first entry, which is also Next.
type Window struct {
	Current Entry
	Next    Entry
	Waiting bool
}

// Result is the flat, label-only form of a Window.
type Result struct {
	CurrentLabel string `json:"currentLabel"`
	NextLabel    string `json:"nextLabel"`
	NextTime     string `json:"nextTime"`
}

// Resolve finds the window containing now. Windows are half-open: a time
// equal to a threshold belongs to that threshold. After the last threshold the
// next entry wraps to the first of the following day.
//
// Entries sharing a time keep their declared order; a query at that time
// lands on the later of them.
func Resolve(now TimeOfDay, table Table) (Window, error) {
	if len(table) == 0 {
		return Window{}, ErrEmptyTable
	}

	sorted := make(Table, len(table))
	copy(sorted, table)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Minutes() < sorted[j].At.Minutes()
	})

	n := now.Minutes()
	if n < sorted[0].At.Minutes() {
		return Window{Current: sorted[0], Next: sorted[0], Waiting: true}, nil
	}

	last := len(sorted) - 1
	for i, e := range sorted {
		next := sorted[(i+1)%len(sorted)]
		if n >= e.At.Minutes() && (i == last || n < next.At.Minutes()) {
			return Window{Current: e, Next: next}, nil
		}
	}

	// Unreachable for a sorted non-empty table: the last entry always matches
	// once now is past the first.
	return Window{Current: sorted[last], Next: sorted[0]}, nil
}

// CurrentLabel names the current window.
func (w Window) CurrentLabel() string {
	if w.Waiting {
		return "waiting for " + w.Current.Name
	}
	return w.Current.Name
}

// NextLabel names the next threshold.
func (w Window) NextLabel() string {
	return w.Next.Name
}

// NextTime is the next threshold formatted as "HH:MM".
func (w Window) NextTime() string {
	return w.Next.At.String()
}

// Result flattens the window into labels.
func (w Window) Result() Result {
	return Result{
		CurrentLabel: w.CurrentLabel(),
		NextLabel:    w.NextLabel(),
		NextTime:     w.NextTime(),
	}
}

// MinutesUntilNext returns the minutes from now to the next threshold,
// wrapping past midnight. It is in (0, 1440] for a window resolved at now.
func (w Window) MinutesUntilNext(now TimeOfDay) int {
	d := w.Next.At.Minutes() - now.Minutes()
	if d <= 0 {
		d += minutesPerDay
	}
	return d
}
