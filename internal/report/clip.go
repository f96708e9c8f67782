package report

import (
	"github.com/storepulse/store-uptime-worker/internal/schedule"
)

// Clip intersects status intervals with UTC business-hours segments,
// discarding everything outside business hours. Both inputs are sorted by
// start time; the output keeps that order.
func Clip(intervals []Interval, segments []schedule.Segment) []Interval {
	var clipped []Interval
	for _, seg := range segments {
		for _, iv := range intervals {
			if !iv.End.After(seg.Start) {
				continue
			}
			if !iv.Start.Before(seg.End) {
				break
			}
			start := iv.Start
			if start.Before(seg.Start) {
				start = seg.Start
			}
			end := iv.End
			if end.After(seg.End) {
				end = seg.End
			}
			if start.Before(end) {
				clipped = append(clipped, Interval{Start: start, End: end, Status: iv.Status})
			}
		}
	}
	return clipped
}
