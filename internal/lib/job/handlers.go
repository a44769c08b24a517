package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/lib/email"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Alerter notifies an operator that a record could not be re-synced.
type Alerter interface {
	SendSyncFailureAlert(to string, alert email.SyncFailureAlert) error
}

// InitHandlers initializes dependencies required by job handlers.
//
// The alert email client is only built when both a Resend API key and an
// alert address are configured; otherwise exhausted tasks are only logged.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	if cfg.Integration.ResendAPIKey == "" || cfg.Sync.AlertEmail == "" {
		logger.Warn().Msg("Sync failure alerts disabled: resend api key or alert email missing")
		return
	}
	j.alerter = email.NewClient(cfg, logger)
}

// handleSearchSyncTask re-reads the record from the store and rewrites or
// removes its index entry. Returning an error makes Asynq retry the task.
func (j *JobService) handleSearchSyncTask(ctx context.Context, t *asynq.Task) error {
	var p SearchSyncPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal search sync payload: %v: %w", err, asynq.SkipRetry)
	}

	kind, ok := model.ParseKind(p.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q: %w", p.Kind, asynq.SkipRetry)
	}

	r, ok := j.resyncer(kind)
	if !ok {
		return fmt.Errorf("no resyncer registered for %s", kind)
	}

	j.logger.Info().
		Str("type", TaskSearchSync).
		Str("kind", p.Kind).
		Int64("id", p.ID).
		Msg("Processing search sync task")

	if err := r.Resync(ctx, p.ID); err != nil {
		j.logger.Error().
			Str("type", TaskSearchSync).
			Str("kind", p.Kind).
			Int64("id", p.ID).
			Err(err).
			Msg("Failed to resync search index")
		return err
	}

	j.logger.Info().
		Str("type", TaskSearchSync).
		Str("kind", p.Kind).
		Int64("id", p.ID).
		Msg("Search index resynced")

	return nil
}

// handleTaskError runs after every failed attempt. Once a sync task will not
// be retried again the failure is escalated.
func (j *JobService) handleTaskError(ctx context.Context, task *asynq.Task, err error) {
	if task.Type() != TaskSearchSync {
		return
	}

	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return
	}

	if !exhausted(retried, maxRetry, err) {
		return
	}

	var p SearchSyncPayload
	_ = json.Unmarshal(task.Payload(), &p)
	j.escalate(p, retried+1, err)
}

func exhausted(retried, maxRetry int, err error) bool {
	return retried >= maxRetry || errors.Is(err, asynq.SkipRetry)
}

func (j *JobService) escalate(p SearchSyncPayload, attempts int, cause error) {
	j.logger.Error().
		Err(cause).
		Str("kind", p.Kind).
		Int64("id", p.ID).
		Int("attempts", attempts).
		Msg("Giving up on search sync task, index left out of sync")

	if j.alerter == nil {
		return
	}

	alert := email.SyncFailureAlert{
		Kind:     p.Kind,
		ID:       strconv.FormatInt(p.ID, 10),
		Op:       string(p.Op),
		Attempts: attempts,
		Reason:   cause.Error(),
	}
	if err := j.alerter.SendSyncFailureAlert(j.cfg.AlertEmail, alert); err != nil {
		j.logger.Error().Err(err).Msg("Failed to send sync failure alert")
	}
}
