package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/pixelmags/internal/errs"
	"github.com/hibiken/asynq"
)

const (
	// TaskSearchSync is the job type name stored in Redis.
	TaskSearchSync = "search:sync"

	// QueueIndex holds search:sync tasks.
	QueueIndex = "index"
)

// SearchSyncPayload identifies the record whose index entry must be repaired.
//
// Op is informational: the handler always re-reads the store, so a stale
// upsert for a since-deleted record ends as a delete.
type SearchSyncPayload struct {
	Kind string      `json:"kind"`
	ID   int64       `json:"id"`
	Op   errs.SyncOp `json:"op"`
}

// NewSearchSyncTask constructs the retry task for a failed index write.
func NewSearchSyncTask(warning *errs.IndexSyncWarning, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(SearchSyncPayload{
		Kind: warning.Kind,
		ID:   warning.ID,
		Op:   warning.Op,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TaskSearchSync, payload, syncTaskOptions(maxRetry)...), nil
}

// syncTaskOptions sets no uniqueness lock. Each failure needs its own task:
// a queued task may read the store before a later commit lands.
func syncTaskOptions(maxRetry int) []asynq.Option {
	return []asynq.Option{
		asynq.MaxRetry(maxRetry),
		asynq.Queue(QueueIndex),
		asynq.Timeout(30 * time.Second),
	}
}
