package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storepulse/store-uptime-worker/internal/cache"
	"github.com/storepulse/store-uptime-worker/internal/config"
	"github.com/storepulse/store-uptime-worker/internal/db"
	"github.com/storepulse/store-uptime-worker/internal/logging"
	"github.com/storepulse/store-uptime-worker/internal/mq"
	"github.com/storepulse/store-uptime-worker/internal/report"
	"github.com/storepulse/store-uptime-worker/internal/schedule"
	"go.uber.org/zap"
)

// ReferenceData is the read-only view of poll, business-hours and timezone
// reference data the orchestrator consumes. The computation core has no
// dependency on the storage behind it.
type ReferenceData interface {
	StoreIDs(ctx context.Context) ([]string, error)
	PollsForStore(ctx context.Context, storeID string, from, to time.Time) ([]db.StatusPoll, error)
	BusinessHours(ctx context.Context) (map[string][]db.BusinessHours, error)
	Timezones(ctx context.Context) (map[string]string, error)
}

// ReportStore persists report job state and the finished artifact
type ReportStore interface {
	Create(ctx context.Context, reportID string) error
	Get(ctx context.Context, reportID string) (*db.Report, error)
	Complete(ctx context.Context, reportID string, csvData string) error
	Fail(ctx context.Context, reportID string, cause string) error
}

// RequestPublisher enqueues report generation requests
type RequestPublisher interface {
	PublishReportRequest(ctx context.Context, req mq.ReportRequest, routingKey string) error
}

// ReportResult is the outward view of a report job
type ReportResult struct {
	Status        string
	CSV           string
	FailureReason string
}

// ReportService orchestrates the report job lifecycle: trigger, per-store
// fan-out over a bounded worker pool, artifact materialization and status
// polling.
type ReportService struct {
	refData   ReferenceData
	reports   ReportStore
	publisher RequestPublisher
	rowCache  *cache.RowCache
	cfg       *config.Config
	logger    *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	refData ReferenceData,
	reports ReportStore,
	publisher RequestPublisher,
	rowCache *cache.RowCache,
	cfg *config.Config,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		refData:   refData,
		reports:   reports,
		publisher: publisher,
		rowCache:  rowCache,
		cfg:       cfg,
		logger:    logger,
	}
}

// Trigger allocates a fresh report id, records the job as Running, enqueues
// the computation and returns without waiting for it. The reference instant
// is captured here, once, so the whole job is computed against a single
// point in time.
func (s *ReportService) Trigger(ctx context.Context) (string, error) {
	reportID := uuid.New().String()
	refTime := s.referenceTime()

	if err := s.reports.Create(ctx, reportID); err != nil {
		return "", fmt.Errorf("failed to create report job: %w", err)
	}

	req := mq.ReportRequest{ReportID: reportID, ReferenceTime: refTime}
	if err := s.publisher.PublishReportRequest(ctx, req, s.cfg.RabbitMQ.ReportRoutingKey); err != nil {
		// The job would sit in Running forever without a worker picking it
		// up; record the dispatch failure on the job itself.
		cause := fmt.Sprintf("failed to enqueue report request: %v", err)
		if failErr := s.reports.Fail(ctx, reportID, cause); failErr != nil {
			s.logger.Error("failed to mark undispatched report as failed",
				zap.Error(failErr),
				zap.String("report_id", reportID),
			)
		}
		return "", fmt.Errorf("failed to enqueue report request: %w", err)
	}

	s.logger.Info("report triggered",
		zap.String("report_id", reportID),
		zap.Time("reference_time", refTime),
	)

	return reportID, nil
}

// Fetch returns the current state of a report job. Unknown ids surface as
// repository.ErrReportNotFound, never as a Running status.
func (s *ReportService) Fetch(ctx context.Context, reportID string) (*ReportResult, error) {
	rep, err := s.reports.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	result := &ReportResult{Status: rep.Status}
	if rep.Status == db.ReportStatusComplete && rep.ReportCSV != nil {
		result.CSV = *rep.ReportCSV
	}
	if rep.FailureReason != nil {
		result.FailureReason = *rep.FailureReason
	}

	return result, nil
}

// HandleRequest is the queue consumer entrypoint
func (s *ReportService) HandleRequest(ctx context.Context, body []byte) error {
	var req mq.ReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("failed to unmarshal report request: %w", err)
	}
	return s.Generate(ctx, req.ReportID, req.ReferenceTime.UTC())
}

// Generate runs the full report computation and drives the job to its
// terminal state. Per-store failures are isolated: the store is skipped and
// the job still completes for the rest. Job-level failures mark the job
// Failed with the cause retained; no partial artifact is ever written.
func (s *ReportService) Generate(ctx context.Context, reportID string, refTime time.Time) error {
	logger := logging.WithReportID(s.logger, reportID)
	logger.Info("starting report generation", zap.Time("reference_time", refTime))

	rows, err := s.computeAllRows(ctx, refTime, logger)
	if err != nil {
		logger.Error("report generation failed", zap.Error(err))
		if failErr := s.reports.Fail(ctx, reportID, err.Error()); failErr != nil {
			return fmt.Errorf("failed to record report failure: %w", failErr)
		}
		// The failure is recorded on the job; the message is consumed.
		return nil
	}

	csvData, err := MarshalCSV(rows)
	if err != nil {
		logger.Error("failed to serialize report", zap.Error(err))
		if failErr := s.reports.Fail(ctx, reportID, err.Error()); failErr != nil {
			return fmt.Errorf("failed to record report failure: %w", failErr)
		}
		return nil
	}

	if err := s.reports.Complete(ctx, reportID, csvData); err != nil {
		return fmt.Errorf("failed to store report artifact: %w", err)
	}

	logger.Info("report completed", zap.Int("stores", len(rows)))
	return nil
}

func (s *ReportService) computeAllRows(ctx context.Context, refTime time.Time, logger *zap.Logger) ([]report.Row, error) {
	storeIDs, err := s.refData.StoreIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store ids: %w", err)
	}
	if len(storeIDs) == 0 {
		return nil, fmt.Errorf("no store status data available")
	}

	hours, err := s.refData.BusinessHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load business hours: %w", err)
	}
	zones, err := s.refData.Timezones(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezones: %w", err)
	}

	resolver := schedule.NewResolver(s.cfg.Report.DefaultTimezone, zones, hours, logger)
	maxAge := time.Duration(s.cfg.Report.MaxPollAgeDays) * 24 * time.Hour
	engine := report.NewEngine(resolver, maxAge, logger)

	var (
		mu      sync.Mutex
		rows    = make([]report.Row, 0, len(storeIDs))
		skipped int
	)

	ids := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < s.cfg.Report.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for storeID := range ids {
				row, err := s.computeStoreRow(ctx, engine, storeID, refTime, logger)
				if err != nil {
					logger.Warn("skipping store with bad reference data",
						zap.Error(err),
						zap.String("store_id", storeID),
					)
					mu.Lock()
					skipped++
					mu.Unlock()
					continue
				}
				mu.Lock()
				rows = append(rows, row)
				mu.Unlock()
			}
		}()
	}

	for _, id := range storeIDs {
		ids <- id
	}
	close(ids)
	wg.Wait()

	if skipped > 0 {
		logger.Warn("some stores were skipped", zap.Int("skipped", skipped))
	}

	// Deterministic artifact: identical inputs and reference instant yield
	// byte-identical CSV regardless of worker scheduling.
	sort.Slice(rows, func(i, j int) bool { return rows[i].StoreID < rows[j].StoreID })

	return rows, nil
}

func (s *ReportService) computeStoreRow(ctx context.Context, engine *report.Engine, storeID string, refTime time.Time, logger *zap.Logger) (report.Row, error) {
	if row, ok := s.rowCache.Get(ctx, storeID, refTime); ok {
		logger.Debug("using cached row", zap.String("store_id", storeID))
		return row, nil
	}

	from := refTime.Add(-time.Duration(s.cfg.Report.MaxPollAgeDays) * 24 * time.Hour)
	dbPolls, err := s.refData.PollsForStore(ctx, storeID, from, refTime)
	if err != nil {
		return report.Row{}, fmt.Errorf("failed to load polls: %w", err)
	}

	polls := make([]report.Poll, 0, len(dbPolls))
	for _, p := range dbPolls {
		polls = append(polls, report.Poll{
			Timestamp: p.TimestampUTC,
			Status:    report.Status(p.Status),
		})
	}

	row, err := engine.ComputeRow(storeID, polls, refTime)
	if err != nil {
		return report.Row{}, err
	}

	s.rowCache.Put(ctx, storeID, refTime, row)
	return row, nil
}

func (s *ReportService) referenceTime() time.Time {
	if override := s.cfg.Report.ReferenceTimeOverride; !override.IsZero() {
		return override
	}
	return time.Now().UTC()
}
