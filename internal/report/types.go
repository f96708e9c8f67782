package report

import (
	"time"
)

// Status is a store's observed state at a poll instant
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Poll is a single timestamped status observation for one store
type Poll struct {
	Timestamp time.Time
	Status    Status
}

// Interval is a continuous span of a single status, derived from polls.
// Consecutive intervals for a store are contiguous and never overlap.
type Interval struct {
	Start  time.Time
	End    time.Time
	Status Status
}

// Duration returns the interval length
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Window is one trailing reporting period, measured back from the
// reference instant.
type Window struct {
	Start time.Time
	End   time.Time
}

// Row is the per-store report output. The last-hour figures are minutes,
// the last-day and last-week figures are hours, all rounded to two decimal
// places.
type Row struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
}
