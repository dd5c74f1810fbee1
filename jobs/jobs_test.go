package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oohdesk/oohdesk/internal/booking"
	"github.com/oohdesk/oohdesk/internal/pricing"
)

func sampleSubmission() booking.Submission {
	item := pricing.Recompute(pricing.LineItem{
		ID:                  "inv-1",
		InventoryID:         "inv-1",
		Dimensions:          []pricing.Dimension{{Width: 10, Height: 20}},
		Unit:                1,
		StartDate:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:             time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		DisplayCostPerMonth: 1000,
		Discount:            10,
		DiscountOn:          pricing.DiscountOnDisplayCost,
	})
	lines := booking.Finalize(pricing.ContextBooking, []pricing.LineItem{item})
	return booking.Submission{
		ID:          "sub-1",
		SessionID:   "sess-1",
		Context:     pricing.ContextBooking,
		Lines:       lines,
		TotalAmount: booking.TotalAmount(lines),
		SubmittedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

type memoryStore struct {
	saved []booking.Submission
	err   error
}

func (m *memoryStore) SaveSubmission(ctx context.Context, sub booking.Submission) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, sub)
	return nil
}

func TestSubmitSelectionTaskRoundTrip(t *testing.T) {
	sub := sampleSubmission()
	task, err := NewSubmitSelectionTask(sub)
	require.NoError(t, err)
	assert.Equal(t, TaskSubmitSelection, task.Type())

	store := &memoryStore{}
	job := NewSubmissionJob(store, nil, nil)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, store.saved, 1)
	got := store.saved[0]
	assert.Equal(t, sub.ID, got.ID)
	assert.Equal(t, 2700.0, got.Lines[0].DiscountedDisplayCost)
	assert.Equal(t, pricing.ContextBooking, got.Lines[0].Context)
	assert.Equal(t, 2700.0, got.TotalAmount)
}

func TestSubmissionJobPayloadErrors(t *testing.T) {
	job := NewSubmissionJob(&memoryStore{}, nil, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskSubmitSelection, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	empty, _ := json.Marshal(booking.Submission{ID: "x"})
	err = job.Handle(context.Background(), asynq.NewTask(TaskSubmitSelection, empty))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	var unset *SubmissionJob
	assert.Error(t, unset.Handle(context.Background(), asynq.NewTask(TaskSubmitSelection, empty)))
}

func TestSubmissionJobDuplicateAndFailure(t *testing.T) {
	task, err := NewSubmitSelectionTask(sampleSubmission())
	require.NoError(t, err)

	dup := NewSubmissionJob(&memoryStore{err: booking.ErrDuplicateSubmission}, nil, nil)
	assert.NoError(t, dup.Handle(context.Background(), task))

	boom := errors.New("db down")
	failing := NewSubmissionJob(&memoryStore{err: boom}, nil, nil)
	assert.ErrorIs(t, failing.Handle(context.Background(), task), boom)
}

type stubEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-42", Queue: QueueCritical}, nil
}

func (s *stubEnqueuer) Close() error { return nil }

func TestClientEnqueueSubmission(t *testing.T) {
	stub := &stubEnqueuer{}
	client := &Client{client: stub}
	id, err := client.EnqueueSubmission(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "task-42", id)
	require.Len(t, stub.tasks, 1)

	stub.err = asynq.ErrTaskIDConflict
	id, err = client.EnqueueSubmission(context.Background(), sampleSubmission())
	require.NoError(t, err)
	assert.Equal(t, "sub-1", id)

	stub.err = errors.New("redis down")
	_, err = client.EnqueueSubmission(context.Background(), sampleSubmission())
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{name: "no inspector", status: http.StatusOK},
		{name: "queue info", inspector: stubInspector{info: &asynq.QueueInfo{Queue: QueueCritical, Pending: 3}}, status: http.StatusOK, pending: 3},
		{name: "unreachable", inspector: stubInspector{err: errors.New("down")}, status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}
