package report

import (
	"fmt"
	"math"
	"time"

	"github.com/storepulse/store-uptime-worker/internal/schedule"
	"go.uber.org/zap"
)

// Engine computes a store's uptime/downtime row for the three trailing
// windows. It is pure computation: reference data comes in as arguments and
// the reference instant is threaded explicitly, so two runs over identical
// inputs produce identical rows.
type Engine struct {
	resolver   *schedule.Resolver
	maxPollAge time.Duration
	logger     *zap.Logger
}

// NewEngine creates a report engine over the resolved reference data
func NewEngine(resolver *schedule.Resolver, maxPollAge time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		resolver:   resolver,
		maxPollAge: maxPollAge,
		logger:     logger,
	}
}

// Windows returns the three trailing reporting periods measured back from
// the reference instant: last hour, last day, last week.
func Windows(now time.Time) [3]Window {
	return [3]Window{
		{Start: now.Add(-time.Hour), End: now},
		{Start: now.Add(-24 * time.Hour), End: now},
		{Start: now.Add(-7 * 24 * time.Hour), End: now},
	}
}

// ComputeRow runs the full pipeline for one store: freshness filter,
// interpolation, boundary extrapolation, business-hours clipping and
// aggregation across the three windows.
func (e *Engine) ComputeRow(storeID string, polls []Poll, now time.Time) (Row, error) {
	fresh := FreshPolls(polls, now, e.maxPollAge)
	intervals := Interpolate(fresh)
	if len(intervals) == 0 {
		e.logger.Debug("no eligible polls for store, defaulting to downtime",
			zap.String("store_id", storeID),
			zap.Int("raw_polls", len(polls)),
		)
	}

	row := Row{StoreID: storeID}
	windows := Windows(now)
	for i, win := range windows {
		segments, err := e.resolver.SegmentsForWindow(storeID, win.Start, win.End)
		if err != nil {
			return Row{}, fmt.Errorf("failed to resolve business hours: %w", err)
		}

		var uptime, downtime time.Duration
		if len(intervals) == 0 {
			// No usable data inside the freshness lookback: the store's
			// business hours in this window count as downtime in full.
			for _, seg := range segments {
				downtime += seg.Duration()
			}
		} else {
			for _, piece := range Clip(CoverWindow(intervals, win), segments) {
				if piece.Status == StatusActive {
					uptime += piece.Duration()
				} else {
					downtime += piece.Duration()
				}
			}
		}

		switch i {
		case 0:
			row.UptimeLastHour = round2(uptime.Minutes())
			row.DowntimeLastHour = round2(downtime.Minutes())
		case 1:
			row.UptimeLastDay = round2(uptime.Hours())
			row.DowntimeLastDay = round2(downtime.Hours())
		case 2:
			row.UptimeLastWeek = round2(uptime.Hours())
			row.DowntimeLastWeek = round2(downtime.Hours())
		}
	}

	return row, nil
}

// round2 rounds to two decimal places, the fixed precision of every figure
// in the report.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
