package report

// CoverWindow extrapolates interpolated intervals onto a reporting window:
// the first interval's status extends backward to the window start, the
// last interval's status extends forward to the window end, and interior
// transitions keep their interpolated instants. The result covers the whole
// window with no gaps. Empty input stays empty; the caller resolves that as
// the no-data default.
func CoverWindow(intervals []Interval, win Window) []Interval {
	if len(intervals) == 0 || !win.Start.Before(win.End) {
		return nil
	}

	n := len(intervals)
	covered := make([]Interval, 0, n)
	for i, iv := range intervals {
		start := win.Start
		if i > 0 {
			start = iv.Start
		}
		end := win.End
		if i < n-1 {
			end = intervals[i+1].Start
		}

		if start.Before(win.Start) {
			start = win.Start
		}
		if end.After(win.End) {
			end = win.End
		}
		if start.Before(end) {
			covered = append(covered, Interval{Start: start, End: end, Status: iv.Status})
		}
	}

	return covered
}
