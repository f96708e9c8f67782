package logging

import (
	"go.uber.org/zap"
)

// NewLogger creates a new structured logger
func NewLogger(serviceName string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.InitialFields = map[string]interface{}{
		"service": serviceName,
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}

// WithReportID returns a logger with report_id field
func WithReportID(logger *zap.Logger, reportID string) *zap.Logger {
	return logger.With(zap.String("report_id", reportID))
}
