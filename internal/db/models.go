package db

import (
	"time"
)

// Report statuses. A report is terminal once Complete or Failed.
const (
	ReportStatusRunning  = "Running"
	ReportStatusComplete = "Complete"
	ReportStatusFailed   = "Failed"
)

// StatusPoll represents a single store status observation
type StatusPoll struct {
	StoreID      string
	TimestampUTC time.Time
	Status       string
}

// BusinessHours represents one open/close range for a store on a weekday.
// DayOfWeek follows the source data: 0=Monday .. 6=Sunday. Times are local
// wall-clock values in "15:04:05" form.
type BusinessHours struct {
	StoreID        string
	DayOfWeek      int
	StartTimeLocal string
	EndTimeLocal   string
}

// StoreTimezone represents a store's IANA timezone record
type StoreTimezone struct {
	StoreID     string
	TimezoneStr string
}

// Report represents a report job row
type Report struct {
	ReportID      string
	Status        string
	ReportCSV     *string
	FailureReason *string
	CreatedAt     time.Time
	CompletedAt   *time.Time
}
