package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/storepulse/store-uptime-worker/internal/db"
	"go.uber.org/zap"
)

// Segment is a UTC business-hours sub-range
type Segment struct {
	Start time.Time
	End   time.Time
}

// Duration returns the segment length
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Resolver resolves a store's timezone and business hours from reference
// data. Missing records are defaults, not errors: no timezone record means
// the configured default zone, no business-hours rows means open 24/7.
type Resolver struct {
	defaultTZ string
	zones     map[string]string
	hours     map[string][]db.BusinessHours
	logger    *zap.Logger
}

// NewResolver creates a resolver over the loaded reference collections
func NewResolver(defaultTZ string, zones map[string]string, hours map[string][]db.BusinessHours, logger *zap.Logger) *Resolver {
	return &Resolver{
		defaultTZ: defaultTZ,
		zones:     zones,
		hours:     hours,
		logger:    logger,
	}
}

// Location returns the store's IANA timezone, falling back to the default
// zone for missing or unloadable records. UTC is the last resort.
func (r *Resolver) Location(storeID string) *time.Location {
	name := r.zones[storeID]
	if name == "" {
		name = r.defaultTZ
	}

	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc
	}
	r.logger.Warn("unknown timezone for store, using default",
		zap.String("store_id", storeID),
		zap.String("timezone", name),
	)

	loc, err = time.LoadLocation(r.defaultTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Open247 reports whether the store has no business-hours rows at all
func (r *Resolver) Open247(storeID string) bool {
	return len(r.hours[storeID]) == 0
}

// SegmentsForWindow returns the store's UTC business-hours sub-ranges
// clipped to [winStart, winEnd], sorted by start time.
//
// Stores with no business-hours rows are open 24/7 and get the whole window
// back as a single segment. Otherwise the window is walked one UTC day at a
// time; each day's local date selects that weekday's rows (a weekday with no
// rows is open the full local day), and a close at or before the open means
// the range runs overnight into the next local day. The walk starts one day
// early so an overnight range opened the previous local day still reaches
// into the window, and runs one day past the window end so a zone behind
// UTC still expands the local day the window ends in.
func (r *Resolver) SegmentsForWindow(storeID string, winStart, winEnd time.Time) ([]Segment, error) {
	rows := r.hours[storeID]
	if len(rows) == 0 {
		return []Segment{{Start: winStart, End: winEnd}}, nil
	}

	byDay := make(map[int][]db.BusinessHours)
	for _, row := range rows {
		byDay[row.DayOfWeek] = append(byDay[row.DayOfWeek], row)
	}

	loc := r.Location(storeID)

	var segments []Segment
	appendClamped := func(open, close time.Time) {
		openUTC := open.UTC()
		closeUTC := close.UTC()
		if openUTC.Before(winStart) {
			openUTC = winStart
		}
		if closeUTC.After(winEnd) {
			closeUTC = winEnd
		}
		if openUTC.Before(closeUTC) {
			segments = append(segments, Segment{Start: openUTC, End: closeUTC})
		}
	}

	day := winStart.UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)
	lastDay := winEnd.UTC().Add(24 * time.Hour)
	for !day.After(lastDay) {
		local := day.In(loc)
		year, month, dom := local.Date()
		weekday := mondayIndex(local.Weekday())

		dayRows, ok := byDay[weekday]
		if !ok {
			// No rows for this weekday: open the full local day.
			open := time.Date(year, month, dom, 0, 0, 0, 0, loc)
			close := time.Date(year, month, dom+1, 0, 0, 0, 0, loc)
			appendClamped(open, close)
		} else {
			for _, row := range dayRows {
				openSec, err := parseLocalTime(row.StartTimeLocal)
				if err != nil {
					return nil, fmt.Errorf("store %s day %d: %w", storeID, row.DayOfWeek, err)
				}
				closeSec, err := parseLocalTime(row.EndTimeLocal)
				if err != nil {
					return nil, fmt.Errorf("store %s day %d: %w", storeID, row.DayOfWeek, err)
				}

				open := time.Date(year, month, dom, 0, 0, openSec, 0, loc)
				close := time.Date(year, month, dom, 0, 0, closeSec, 0, loc)
				if !close.After(open) {
					// Overnight range: close falls on the next local day.
					close = time.Date(year, month, dom+1, 0, 0, closeSec, 0, loc)
				}
				appendClamped(open, close)
			}
		}

		day = day.Add(24 * time.Hour)
	}

	sort.Slice(segments, func(i, j int) bool {
		return segments[i].Start.Before(segments[j].Start)
	})

	return segments, nil
}

// mondayIndex maps Go's Sunday-first weekday onto the source data's
// 0=Monday .. 6=Sunday convention.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// parseLocalTime parses "15:04:05" (or "15:04") into seconds since local
// midnight.
func parseLocalTime(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed local time '%s'", value)
	}

	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, fmt.Errorf("malformed local time '%s': %w", value, err)
		}
		total += n * unit
	}
	if total < 0 || total >= 24*3600 {
		return 0, fmt.Errorf("local time '%s' out of range", value)
	}

	return total, nil
}
