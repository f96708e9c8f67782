package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/storepulse/store-uptime-worker/internal/report"
)

var csvHeader = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// MarshalCSV serializes report rows into the report artifact. Column order
// matches the header: uptime figures first, then downtime, hour in minutes
// and day/week in hours.
func MarshalCSV(rows []report.Row) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.StoreID,
			formatMetric(row.UptimeLastHour),
			formatMetric(row.UptimeLastDay),
			formatMetric(row.UptimeLastWeek),
			formatMetric(row.DowntimeLastHour),
			formatMetric(row.DowntimeLastDay),
			formatMetric(row.DowntimeLastWeek),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row for store %s: %w", row.StoreID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.String(), nil
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
