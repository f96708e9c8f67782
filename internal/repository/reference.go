package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepulse/store-uptime-worker/internal/db"
)

// ReferenceRepository serves read-only poll, business-hours and timezone
// reference data. Reads are concurrent-safe; nothing writes these tables
// during report computation.
type ReferenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository creates a new reference data repository
func NewReferenceRepository(pool *pgxpool.Pool) *ReferenceRepository {
	return &ReferenceRepository{pool: pool}
}

// StoreIDs returns the distinct store ids present in the status data
func (r *ReferenceRepository) StoreIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT store_id
		FROM store_status
		ORDER BY store_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query store ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan store id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return ids, nil
}

// PollsForStore returns a store's status polls within [from, to], ascending
// by timestamp.
func (r *ReferenceRepository) PollsForStore(ctx context.Context, storeID string, from, to time.Time) ([]db.StatusPoll, error) {
	query := `
		SELECT store_id, timestamp_utc, status
		FROM store_status
		WHERE store_id = $1 AND timestamp_utc >= $2 AND timestamp_utc <= $3
		ORDER BY timestamp_utc ASC
	`

	rows, err := r.pool.Query(ctx, query, storeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls for store %s: %w", storeID, err)
	}
	defer rows.Close()

	var polls []db.StatusPoll
	for rows.Next() {
		var p db.StatusPoll
		if err := rows.Scan(&p.StoreID, &p.TimestampUTC, &p.Status); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		p.TimestampUTC = p.TimestampUTC.UTC()
		polls = append(polls, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return polls, nil
}

// BusinessHours returns all business-hours rows, grouped by store id
func (r *ReferenceRepository) BusinessHours(ctx context.Context) (map[string][]db.BusinessHours, error) {
	query := `
		SELECT store_id, day_of_week, start_time_local::text, end_time_local::text
		FROM business_hours
		ORDER BY store_id, day_of_week, start_time_local
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query business hours: %w", err)
	}
	defer rows.Close()

	hours := make(map[string][]db.BusinessHours)
	for rows.Next() {
		var bh db.BusinessHours
		if err := rows.Scan(&bh.StoreID, &bh.DayOfWeek, &bh.StartTimeLocal, &bh.EndTimeLocal); err != nil {
			return nil, fmt.Errorf("failed to scan business hours: %w", err)
		}
		hours[bh.StoreID] = append(hours[bh.StoreID], bh)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return hours, nil
}

// Timezones returns the timezone string per store id
func (r *ReferenceRepository) Timezones(ctx context.Context) (map[string]string, error) {
	query := `
		SELECT store_id, timezone_str
		FROM store_timezones
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query timezones: %w", err)
	}
	defer rows.Close()

	zones := make(map[string]string)
	for rows.Next() {
		var tz db.StoreTimezone
		if err := rows.Scan(&tz.StoreID, &tz.TimezoneStr); err != nil {
			return nil, fmt.Errorf("failed to scan timezone: %w", err)
		}
		zones[tz.StoreID] = tz.TimezoneStr
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return zones, nil
}
