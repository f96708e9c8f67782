package report

import (
	"testing"
	"time"

	"github.com/storepulse/store-uptime-worker/internal/db"
	"github.com/storepulse/store-uptime-worker/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(zones map[string]string, hours map[string][]db.BusinessHours) *Engine {
	resolver := schedule.NewResolver("America/Chicago", zones, hours, zap.NewNop())
	return NewEngine(resolver, maxPollAge, zap.NewNop())
}

func allWeekHours(storeID, start, end string) []db.BusinessHours {
	rows := make([]db.BusinessHours, 0, 7)
	for day := 0; day < 7; day++ {
		rows = append(rows, db.BusinessHours{
			StoreID:        storeID,
			DayOfWeek:      day,
			StartTimeLocal: start,
			EndTimeLocal:   end,
		})
	}
	return rows
}

func TestComputeRow_AlwaysActive247(t *testing.T) {
	engine := newTestEngine(map[string]string{"s1": "UTC"}, nil)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	var polls []Poll
	for ts := now.Add(-24 * time.Hour); !ts.After(now); ts = ts.Add(30 * time.Minute) {
		polls = append(polls, Poll{Timestamp: ts, Status: StatusActive})
	}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 0.0, row.DowntimeLastHour, 1e-9)
	assert.InDelta(t, 24.0, row.UptimeLastDay, 1e-9)
	assert.InDelta(t, 0.0, row.DowntimeLastDay, 1e-9)
	assert.InDelta(t, 168.0, row.UptimeLastWeek, 1e-9)
	assert.InDelta(t, 0.0, row.DowntimeLastWeek, 1e-9)
}

func TestComputeRow_MidpointSplitInsideHourWindow(t *testing.T) {
	engine := newTestEngine(map[string]string{"s1": "UTC"}, nil)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	// Active at -30min, inactive at -20min: transition at -25min, so the
	// hour window splits into 35 active and 25 inactive minutes.
	polls := []Poll{
		{Timestamp: now.Add(-30 * time.Minute), Status: StatusActive},
		{Timestamp: now.Add(-20 * time.Minute), Status: StatusInactive},
	}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.InDelta(t, 35.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 25.0, row.DowntimeLastHour, 1e-9)
}

func TestComputeRow_StaleDataIsFullDowntime(t *testing.T) {
	engine := newTestEngine(map[string]string{"s1": "UTC"}, nil)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	// The only poll is active but older than the freshness lookback.
	polls := []Poll{
		{Timestamp: now.Add(-9 * 24 * time.Hour), Status: StatusActive},
	}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 60.0, row.DowntimeLastHour, 1e-9)
	assert.InDelta(t, 24.0, row.DowntimeLastDay, 1e-9)
	assert.InDelta(t, 168.0, row.DowntimeLastWeek, 1e-9)
}

func TestComputeRow_NoDataDowntimeRespectsBusinessHours(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"s1": allWeekHours("s1", "09:00:00", "13:00:00"),
	}
	engine := newTestEngine(map[string]string{"s1": "UTC"}, hours)
	now := time.Date(2023, 6, 8, 12, 30, 0, 0, time.UTC)

	row, err := engine.ComputeRow("s1", nil, now)
	require.NoError(t, err)

	// Hour window 11:30-12:30 sits fully inside business hours.
	assert.InDelta(t, 0.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 60.0, row.DowntimeLastHour, 1e-9)
	// Four open hours per day, all downtime.
	assert.InDelta(t, 4.0, row.DowntimeLastDay, 1e-9)
	assert.InDelta(t, 28.0, row.DowntimeLastWeek, 1e-9)
}

func TestComputeRow_SinglePollExtendsAcrossWindow(t *testing.T) {
	engine := newTestEngine(map[string]string{"s1": "UTC"}, nil)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	polls := []Poll{
		{Timestamp: now.Add(-30 * time.Minute), Status: StatusActive},
	}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 24.0, row.UptimeLastDay, 1e-9)
	assert.InDelta(t, 168.0, row.UptimeLastWeek, 1e-9)
}

func TestComputeRow_OvernightHoursMatchDaytimeEquivalent(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"night": allWeekHours("night", "22:00:00", "02:00:00"),
		"day":   allWeekHours("day", "09:00:00", "13:00:00"),
	}
	engine := newTestEngine(map[string]string{"night": "UTC", "day": "UTC"}, hours)
	now := time.Date(2023, 6, 8, 12, 0, 0, 0, time.UTC)

	polls := []Poll{{Timestamp: now.Add(-time.Hour), Status: StatusActive}}

	nightRow, err := engine.ComputeRow("night", polls, now)
	require.NoError(t, err)
	dayRow, err := engine.ComputeRow("day", polls, now)
	require.NoError(t, err)

	// 22:00-02:00 splits across two UTC days but still sums to the same
	// four open hours as 09:00-13:00.
	assert.InDelta(t, 4.0, nightRow.UptimeLastDay, 1e-9)
	assert.InDelta(t, 4.0, dayRow.UptimeLastDay, 1e-9)
	assert.InDelta(t, 28.0, nightRow.UptimeLastWeek, 1e-9)
	assert.InDelta(t, 28.0, dayRow.UptimeLastWeek, 1e-9)
}

func TestComputeRow_ShortDailyHours(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"s1": allWeekHours("s1", "10:00:00", "12:00:00"),
	}
	engine := newTestEngine(map[string]string{"s1": "UTC"}, hours)

	now := time.Date(2023, 6, 8, 13, 0, 0, 0, time.UTC)
	polls := []Poll{{Timestamp: now.Add(-30 * time.Minute), Status: StatusActive}}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	// The hour window 12:00-13:00 is entirely outside business hours.
	assert.InDelta(t, 0.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 0.0, row.DowntimeLastHour, 1e-9)
	assert.InDelta(t, 2.0, row.UptimeLastDay, 1e-9)
	assert.InDelta(t, 14.0, row.UptimeLastWeek, 1e-9)
}

func TestComputeRow_HourWindowInLocalBusinessDay(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"s1": allWeekHours("s1", "09:00:00", "17:00:00"),
	}
	engine := newTestEngine(map[string]string{"s1": "America/Chicago"}, hours)

	// 19:00 UTC is 14:00 CDT; the trailing hour sits inside the local
	// business day even though that day began on the previous UTC date.
	now := time.Date(2023, 6, 8, 19, 0, 0, 0, time.UTC)
	polls := []Poll{{Timestamp: now.Add(-30 * time.Minute), Status: StatusActive}}

	row, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.InDelta(t, 60.0, row.UptimeLastHour, 1e-9)
	assert.InDelta(t, 0.0, row.DowntimeLastHour, 1e-9)
}

func TestComputeRow_Deterministic(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"s1": allWeekHours("s1", "08:30:00", "21:15:00"),
	}
	engine := newTestEngine(map[string]string{"s1": "America/Denver"}, hours)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	polls := []Poll{
		{Timestamp: now.Add(-50 * time.Hour), Status: StatusActive},
		{Timestamp: now.Add(-20 * time.Hour), Status: StatusInactive},
		{Timestamp: now.Add(-3 * time.Hour), Status: StatusActive},
		{Timestamp: now.Add(-10 * time.Minute), Status: StatusActive},
	}

	first, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)
	second, err := engine.ComputeRow("s1", polls, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeRow_MalformedBusinessHours(t *testing.T) {
	hours := map[string][]db.BusinessHours{
		"s1": {{StoreID: "s1", DayOfWeek: 0, StartTimeLocal: "not-a-time", EndTimeLocal: "17:00:00"}},
	}
	engine := newTestEngine(map[string]string{"s1": "UTC"}, hours)
	now := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	_, err := engine.ComputeRow("s1", []Poll{{Timestamp: now, Status: StatusActive}}, now)
	assert.Error(t, err)
}
