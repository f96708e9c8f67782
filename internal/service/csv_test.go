package service

import (
	"testing"

	"github.com/storepulse/store-uptime-worker/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCSV(t *testing.T) {
	rows := []report.Row{
		{
			StoreID:          "store-a",
			UptimeLastHour:   60,
			UptimeLastDay:    23.5,
			UptimeLastWeek:   166.25,
			DowntimeLastHour: 0,
			DowntimeLastDay:  0.5,
			DowntimeLastWeek: 1.75,
		},
		{
			StoreID:        "store-b",
			UptimeLastHour: 12.34,
		},
	}

	csvData, err := MarshalCSV(rows)
	require.NoError(t, err)

	expected := "store_id,uptime_last_hour,uptime_last_day,uptime_last_week,downtime_last_hour,downtime_last_day,downtime_last_week\n" +
		"store-a,60,23.5,166.25,0,0.5,1.75\n" +
		"store-b,12.34,0,0,0,0,0\n"
	assert.Equal(t, expected, csvData)
}

func TestMarshalCSV_EmptyRows(t *testing.T) {
	csvData, err := MarshalCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "store_id,uptime_last_hour,uptime_last_day,uptime_last_week,downtime_last_hour,downtime_last_day,downtime_last_week\n", csvData)
}
