package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library mux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterReportRoutes wires the report trigger/poll endpoints
func (r *Router) RegisterReportRoutes(h *ReportHandler) {
	r.Handle("/trigger-report", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.TriggerReport(w, req)
	})

	r.Handle("/get-report/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		reportID := strings.TrimPrefix(req.URL.Path, "/get-report/")
		if reportID == "" || strings.Contains(reportID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.GetReport(w, req, reportID)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
