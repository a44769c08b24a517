// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - You enqueue tasks (producer) using asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
//
// The only task today is search:sync, which repairs a search index entry
// whose write failed after the entity store had committed.
package job

import (
	"context"
	"sync"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Resyncer converges the index entry of one record to the store state.
type Resyncer interface {
	Resync(ctx context.Context, id int64) error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	server *asynq.Server
	logger *zerolog.Logger
	cfg    config.SyncConfig

	mu        sync.RWMutex
	resyncers map[model.Kind]Resyncer

	alerter Alerter
}

// NewJobService creates a JobService configured to use Redis from cfg.
//
// Sync tasks run on their own "index" queue, which gets the largest share of
// the workers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisAddr := cfg.Redis.Address

	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: redisAddr,
	})

	j := &JobService{
		Client:    client,
		logger:    logger,
		cfg:       cfg.Sync,
		resyncers: make(map[model.Kind]Resyncer),
	}

	j.server = asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: cfg.Sync.Concurrency,
			Queues: map[string]int{
				QueueIndex: 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(j.handleTaskError),
			Logger:       newAsynqLogger(logger),
		},
	)

	return j
}

// RegisterResyncer routes sync tasks of kind to r. Register every kind
// before calling Start.
func (j *JobService) RegisterResyncer(kind model.Kind, r Resyncer) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.resyncers[kind] = r
}

func (j *JobService) resyncer(kind model.Kind) (Resyncer, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	r, ok := j.resyncers[kind]
	return r, ok
}

// Start registers the task handlers and starts the worker server in the
// background.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSearchSync, j.handleSearchSyncTask)

	j.logger.Info().Int("concurrency", j.cfg.Concurrency).Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	return nil
}

// Stop gracefully stops the job server and closes client resources.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.server.Shutdown()
	j.Client.Close()
}

// ReportSyncFailure queues a search:sync task for the failed write. Repeated
// failures for one record queue one task each.
func (j *JobService) ReportSyncFailure(ctx context.Context, warning *errs.IndexSyncWarning) {
	task, err := NewSearchSyncTask(warning, j.cfg.MaxRetry)
	if err != nil {
		j.logger.Error().Err(err).Msg("Failed to build search sync task")
		return
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		j.logger.Error().
			Err(err).
			Str("kind", warning.Kind).
			Int64("id", warning.ID).
			Msg("Failed to enqueue search sync task")
		return
	}

	j.logger.Info().
		Str("task_id", info.ID).
		Str("kind", warning.Kind).
		Int64("id", warning.ID).
		Str("op", string(warning.Op)).
		Msg("Queued search sync task")
}
