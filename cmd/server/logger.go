package main

import (
	"github.com/storepulse/store-uptime-worker/internal/config"
	"github.com/storepulse/store-uptime-worker/internal/logging"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName)
}
