package report

import (
	"time"
)

// FreshPolls filters a time-ordered poll sequence down to the polls inside
// the freshness lookback: a poll is eligible only if now−timestamp ≤ maxAge.
// An empty result means the store has no usable data for the whole report,
// which the engine resolves as full downtime over business hours.
//
// Polls sharing a timestamp collapse to the last one seen (last-wins).
func FreshPolls(polls []Poll, now time.Time, maxAge time.Duration) []Poll {
	var fresh []Poll
	for _, p := range polls {
		if now.Sub(p.Timestamp) > maxAge {
			continue
		}
		if n := len(fresh); n > 0 && fresh[n-1].Timestamp.Equal(p.Timestamp) {
			fresh[n-1] = p
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh
}
