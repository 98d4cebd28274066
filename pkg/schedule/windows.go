package schedule

import (
	"sort"
	"time"
)

// Window is a half-open availability interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Participant holds an id and its free windows, sorted ascending and
// non-overlapping.
type Participant struct {
	ID      string   `json:"id"`
	Windows []Window `json:"availability_windows"`
}

// NormalizeWindows sorts windows ascending, drops empty ones and merges
// overlaps, restoring the Participant invariant.
func NormalizeWindows(windows []Window) []Window {
	valid := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.End.After(w.Start) {
			valid = append(valid, w)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].Start.Before(valid[j].Start) })

	var merged []Window
	for _, w := range valid {
		if n := len(merged); n > 0 && !w.Start.After(merged[n-1].End) {
			if w.End.After(merged[n-1].End) {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// intersect returns the pairwise intersection of two sorted window sets.
func intersect(a, b []Window) []Window {
	var out []Window
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := maxTime(a[i].Start, b[j].Start)
		end := minTime(a[i].End, b[j].End)
		if end.After(start) {
			out = append(out, Window{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// clamp restricts windows to [horizonStart, horizonEnd).
func clamp(windows []Window, horizonStart, horizonEnd time.Time) []Window {
	return intersect(windows, []Window{{Start: horizonStart, End: horizonEnd}})
}

// Subtract removes [start, end) from the window set, splitting windows that
// straddle the booked interval.
func Subtract(windows []Window, start, end time.Time) []Window {
	var out []Window
	for _, w := range windows {
		if !end.After(w.Start) || !start.Before(w.End) {
			out = append(out, w)
			continue
		}
		if start.After(w.Start) {
			out = append(out, Window{Start: w.Start, End: start})
		}
		if end.Before(w.End) {
			out = append(out, Window{Start: end, End: w.End})
		}
	}
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
