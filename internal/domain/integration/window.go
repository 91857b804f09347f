package integration

import "time"

// TimeWindow is one bounded sub-interval of a requested time range, sized
// to respect the vendor API's maximum range-per-request limit.
type TimeWindow struct {
	// Start is the inclusive window start
	Start time.Time
	// End is the window end; the final window ends exactly at the
	// requested range end
	End time.Time
}

// Duration returns the window length
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// ChunkWindows splits [from, to] into contiguous, non-overlapping windows
// no longer than maxSpan. The cursor advances by min(maxSpan, remaining),
// so the union of all windows covers the requested interval exactly.
// from == to yields an empty slice. Pure; never fails. An inverted range
// or non-positive span also yields an empty slice.
func ChunkWindows(from, to time.Time, maxSpan time.Duration) []TimeWindow {
	if maxSpan <= 0 || !from.Before(to) {
		return nil
	}

	windows := make([]TimeWindow, 0, to.Sub(from)/maxSpan+1)
	cursor := from
	for cursor.Before(to) {
		end := cursor.Add(maxSpan)
		if end.After(to) {
			end = to
		}
		windows = append(windows, TimeWindow{Start: cursor, End: end})
		cursor = end
	}
	return windows
}
