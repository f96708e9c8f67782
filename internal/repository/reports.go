package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepulse/store-uptime-worker/internal/db"
)

// ErrReportNotFound is returned when a report id is unknown. Callers must
// surface this as "not found", never as a Running status.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists report job state and artifacts
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Create inserts a new report job in Running state
func (r *ReportRepository) Create(ctx context.Context, reportID string) error {
	query := `
		INSERT INTO reports (report_id, status, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, reportID, db.ReportStatusRunning, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", reportID, err)
	}

	return nil
}

// Get returns a report job by id
func (r *ReportRepository) Get(ctx context.Context, reportID string) (*db.Report, error) {
	query := `
		SELECT report_id, status, report_csv, failure_reason, created_at, completed_at
		FROM reports
		WHERE report_id = $1
	`

	var report db.Report
	err := r.pool.QueryRow(ctx, query, reportID).Scan(
		&report.ReportID,
		&report.Status,
		&report.ReportCSV,
		&report.FailureReason,
		&report.CreatedAt,
		&report.CompletedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to query report %s: %w", reportID, err)
	}

	return &report, nil
}

// Complete stores the finished artifact and marks the job Complete. The
// guarded update keeps the transition monotonic: a job that already left
// Running is never overwritten.
func (r *ReportRepository) Complete(ctx context.Context, reportID string, csvData string) error {
	query := `
		UPDATE reports
		SET status = $1, report_csv = $2, completed_at = $3
		WHERE report_id = $4 AND status = $5
	`

	tag, err := r.pool.Exec(ctx, query,
		db.ReportStatusComplete, csvData, time.Now().UTC(), reportID, db.ReportStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to complete report %s: %w", reportID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s is not running, refusing to complete: %w", reportID, ErrReportNotFound)
	}

	return nil
}

// Fail records the failure cause and marks the job Failed. No artifact is
// ever written on this path.
func (r *ReportRepository) Fail(ctx context.Context, reportID string, cause string) error {
	query := `
		UPDATE reports
		SET status = $1, failure_reason = $2, completed_at = $3
		WHERE report_id = $4 AND status = $5
	`

	tag, err := r.pool.Exec(ctx, query,
		db.ReportStatusFailed, cause, time.Now().UTC(), reportID, db.ReportStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to mark report %s failed: %w", reportID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s is not running, refusing to fail: %w", reportID, ErrReportNotFound)
	}

	return nil
}
