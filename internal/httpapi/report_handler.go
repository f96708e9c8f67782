package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/storepulse/store-uptime-worker/internal/db"
	"github.com/storepulse/store-uptime-worker/internal/repository"
	"github.com/storepulse/store-uptime-worker/internal/service"
	"go.uber.org/zap"
)

// ReportTrigger is the service surface the handler needs
type ReportTrigger interface {
	Trigger(ctx context.Context) (string, error)
	Fetch(ctx context.Context, reportID string) (*service.ReportResult, error)
}

// ReportHandler serves the report trigger/poll endpoints
type ReportHandler struct {
	reports ReportTrigger
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportTrigger, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// TriggerReport creates a new report job and returns its id immediately;
// computation continues in the background.
func (h *ReportHandler) TriggerReport(w http.ResponseWriter, r *http.Request) {
	reportID, err := h.reports.Trigger(r.Context())
	if err != nil {
		h.logger.Error("failed to trigger report", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to trigger report"})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"report_id": reportID})
}

// GetReport returns the job's status, or the CSV artifact once Complete. A
// Failed job is still a 200 with its status: the failure belongs to the
// job, not the transport. Unknown ids are 404, never Running.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request, reportID string) {
	result, err := h.reports.Fetch(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		h.logger.Error("failed to fetch report",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch report"})
		return
	}

	if result.Status != db.ReportStatusComplete {
		writeJSON(w, http.StatusOK, map[string]string{"status": result.Status})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(result.CSV)); err != nil {
		h.logger.Warn("failed to write report body",
			zap.Error(err),
			zap.String("report_id", reportID),
		)
	}
}
