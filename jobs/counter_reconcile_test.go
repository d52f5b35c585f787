package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/vsbilling/vsbilling/internal/jobs"
)

type fakeReconciler struct {
	owners   []string
	allCalls int
	moved    int64
	ownerErr error
	allErr   error
}

func (f *fakeReconciler) Reconcile(ctx context.Context, owner string) error {
	f.owners = append(f.owners, owner)
	return f.ownerErr
}

func (f *fakeReconciler) ReconcileAll(ctx context.Context) (int64, error) {
	f.allCalls++
	return f.moved, f.allErr
}

func newJob(r CounterReconciler) *CounterReconcileJob {
	return NewCounterReconcileJob(r, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestNewCounterReconcileTask(t *testing.T) {
	task, err := NewCounterReconcileTask("owner-1")
	require.NoError(t, err)
	assert.Equal(t, TaskCounterReconcile, task.Type())

	var payload CounterReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "owner-1", payload.OwnerID)
}

func TestCounterReconcileAllOwners(t *testing.T) {
	r := &fakeReconciler{moved: 2}
	task, err := NewCounterReconcileTask("")
	require.NoError(t, err)

	require.NoError(t, newJob(r).Handle(context.Background(), task))
	assert.Equal(t, 1, r.allCalls)
	assert.Empty(t, r.owners)
}

func TestCounterReconcileSingleOwner(t *testing.T) {
	r := &fakeReconciler{}
	task, err := NewCounterReconcileTask("owner-7")
	require.NoError(t, err)

	require.NoError(t, newJob(r).Handle(context.Background(), task))
	assert.Equal(t, []string{"owner-7"}, r.owners)
	assert.Zero(t, r.allCalls)
}

func TestCounterReconcilePropagatesFailure(t *testing.T) {
	boom := errors.New("db down")
	task, err := NewCounterReconcileTask("")
	require.NoError(t, err)

	err = newJob(&fakeReconciler{allErr: boom}).Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
}

func TestCounterReconcileRejectsBadPayload(t *testing.T) {
	task := asynq.NewTask(TaskCounterReconcile, []byte("{not json"))
	err := newJob(&fakeReconciler{}).Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCounterReconcileUnconfigured(t *testing.T) {
	var job *CounterReconcileJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskCounterReconcile, nil)))
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var health QueueHealth
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, QueueDefault, health.Queue)
}
