package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCounterReconcile raises bill number counters to match stored bills.
	TaskCounterReconcile = "billing:counter_reconcile"
	// TaskIdempotencyCleanup purges expired Idempotency-Key claims.
	TaskIdempotencyCleanup = "billing:idempotency_cleanup"
)

// CounterReconcilePayload selects the accounts to reconcile. An empty owner
// means every account with bills.
type CounterReconcilePayload struct {
	OwnerID string `json:"owner_id,omitempty"`
}

// NewCounterReconcileTask constructs an Asynq task.
func NewCounterReconcileTask(ownerID string) (*asynq.Task, error) {
	data, err := json.Marshal(CounterReconcilePayload{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCounterReconcile, data, asynq.Queue(QueueDefault)), nil
}

// NewIdempotencyCleanupTask constructs an Asynq task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil, asynq.Queue(QueueDefault))
}
