package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/oohdesk/oohdesk/internal/booking"
	jobmetrics "github.com/oohdesk/oohdesk/internal/jobs"
)

// SubmissionStore persists finalised submissions.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, sub booking.Submission) error
}

// SubmissionJob writes enqueued submissions to the database.
type SubmissionJob struct {
	Store   SubmissionStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSubmissionJob wires dependencies for the submission handler.
func NewSubmissionJob(store SubmissionStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *SubmissionJob {
	return &SubmissionJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle processes TaskSubmitSelection tasks.
func (j *SubmissionJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Store == nil {
		return errors.New("submission: handler not configured")
	}
	var sub booking.Submission
	if err := json.Unmarshal(t.Payload(), &sub); err != nil {
		return asynq.SkipRetry
	}
	if sub.ID == "" || len(sub.Lines) == 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskSubmitSelection)
	defer func() {
		err = tracker.End(err)
	}()

	logger := j.logger().With(
		slog.String("submission_id", sub.ID),
		slog.String("type", string(sub.Context)),
	)
	if err := j.Store.SaveSubmission(ctx, sub); err != nil {
		if errors.Is(err, booking.ErrDuplicateSubmission) {
			logger.Info("submission already stored")
			return nil
		}
		logger.Error("save submission", slog.Any("error", err))
		return err
	}
	j.Metrics.AddSubmittedLines(string(sub.Context), len(sub.Lines))
	logger.Info("submission stored", slog.Int("lines", len(sub.Lines)), slog.Float64("total", sub.TotalAmount))
	return nil
}

func (j *SubmissionJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
