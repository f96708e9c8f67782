package report

// Interpolate converts a time-ordered poll sequence into contiguous status
// intervals spanning the first to the last poll timestamp. A status change
// between two neighbouring polls is placed at the arithmetic midpoint of
// their timestamps; polls repeating the same status simply extend the
// current interval. A single poll yields one zero-length interval, which
// boundary extrapolation later stretches across the window.
func Interpolate(polls []Poll) []Interval {
	if len(polls) == 0 {
		return nil
	}

	intervals := make([]Interval, 0, len(polls))
	current := Interval{
		Start:  polls[0].Timestamp,
		End:    polls[0].Timestamp,
		Status: polls[0].Status,
	}

	for _, p := range polls[1:] {
		if p.Status == current.Status {
			current.End = p.Timestamp
			continue
		}
		midpoint := current.End.Add(p.Timestamp.Sub(current.End) / 2)
		current.End = midpoint
		intervals = append(intervals, current)
		current = Interval{Start: midpoint, End: p.Timestamp, Status: p.Status}
	}

	return append(intervals, current)
}
