package service

import (
	"context"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/logger"
	"github.com/rs/zerolog"
)

// SyncReporter receives index writes that failed after the store committed.
type SyncReporter interface {
	ReportSyncFailure(ctx context.Context, warning *errs.IndexSyncWarning)
}

// LogReporter logs sync failures and records them as New Relic events.
type LogReporter struct {
	logger        *zerolog.Logger
	loggerService *logger.LoggerService
}

func NewLogReporter(log *zerolog.Logger, loggerService *logger.LoggerService) *LogReporter {
	return &LogReporter{logger: log, loggerService: loggerService}
}

func (r *LogReporter) ReportSyncFailure(ctx context.Context, warning *errs.IndexSyncWarning) {
	r.logger.Warn().
		Err(warning.Err).
		Str("kind", warning.Kind).
		Int64("id", warning.ID).
		Str("op", string(warning.Op)).
		Msg("search index out of sync")

	if r.loggerService != nil {
		r.loggerService.RecordCustomEvent("IndexSyncFailure", map[string]any{
			"kind":  warning.Kind,
			"id":    warning.ID,
			"op":    string(warning.Op),
			"error": warning.Err.Error(),
		})
	}
}

// Reporters fans a failure out to every reporter in order.
type Reporters []SyncReporter

func (rs Reporters) ReportSyncFailure(ctx context.Context, warning *errs.IndexSyncWarning) {
	for _, r := range rs {
		r.ReportSyncFailure(ctx, warning)
	}
}
