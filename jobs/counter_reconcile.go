package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/vsbilling/vsbilling/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// CounterReconciler is satisfied by *billing.Numbering.
type CounterReconciler interface {
	Reconcile(ctx context.Context, owner string) error
	ReconcileAll(ctx context.Context) (int64, error)
}

// CounterReconcileJob keeps bill counters ahead of every stored bill number.
type CounterReconcileJob struct {
	Numbering CounterReconciler
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewCounterReconcileJob wires dependencies for the reconcile handler.
func NewCounterReconcileJob(numbering CounterReconciler, logger *slog.Logger, metrics *jobmetrics.Metrics) *CounterReconcileJob {
	return &CounterReconcileJob{Numbering: numbering, Logger: logger, Metrics: metrics}
}

// Handle processes TaskCounterReconcile tasks.
func (j *CounterReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Numbering == nil {
		return errors.New("counter reconcile: handler not configured")
	}
	var payload CounterReconcilePayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("counter reconcile: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskCounterReconcile)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := time.Now()
	logger := j.logger()
	if payload.OwnerID != "" {
		logger = logger.With(slog.String("owner", payload.OwnerID))
		if err := j.Numbering.Reconcile(ctx, payload.OwnerID); err != nil {
			resultErr = err
			logger.Error("reconcile bill counter", slog.Any("error", err))
			return resultErr
		}
		logger.Info("completed counter reconcile", slog.Duration("duration", time.Since(start)))
		return resultErr
	}

	moved, err := j.Numbering.ReconcileAll(ctx)
	if err != nil {
		resultErr = err
		logger.Error("reconcile bill counters", slog.Any("error", err))
		return resultErr
	}
	j.metrics().AddReconciled(moved)
	logger.Info("completed counter reconcile", slog.Int64("raised", moved), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *CounterReconcileJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *CounterReconcileJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCounterReconcile))
	}
	return slog.Default().With(slog.String("job", TaskCounterReconcile))
}
