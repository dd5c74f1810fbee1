package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oohdesk/oohdesk/internal/selection"
)

// Sessions resolves and closes editing sessions.
type Sessions interface {
	Get(ctx context.Context, id string) (*selection.Session, error)
	Close(ctx context.Context, id string) error
}

// Enqueuer hands a finalised submission to the background worker.
type Enqueuer interface {
	EnqueueSubmission(ctx context.Context, sub Submission) (string, error)
}

// submissionNamespace scopes submission ids derived from session ids.
var submissionNamespace = uuid.MustParse("6f1c2e0a-4b7d-4f43-9a52-0d8e5c3b7a91")

// SubmissionID is the submission id of a session. A session submits at most
// once, so repeated or concurrent submits map onto the same queued task.
func SubmissionID(sessionID string) string {
	return uuid.NewSHA1(submissionNamespace, []byte(sessionID)).String()
}

// Service runs the submission boundary for editing sessions.
type Service struct {
	sessions Sessions
	avail    Availability
	enqueuer Enqueuer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the submission service. avail may be nil.
func NewService(sessions Sessions, avail Availability, enqueuer Enqueuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		avail:    avail,
		enqueuer: enqueuer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Check validates the session's selection without submitting it.
func (s *Service) Check(ctx context.Context, sessionID string) ([]Warning, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Validate(ctx, sess.Store.Get(), s.avail)
}

// Submit validates and finalises the session's selection and enqueues it.
// The selection is cleared only once the enqueue succeeded. Advisory
// warnings hold the submission back unless acknowledged.
func (s *Service) Submit(ctx context.Context, sessionID string, opts SubmitOptions) (Result, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	items := sess.Store.Get()
	if len(items) == 0 {
		return Result{}, ErrEmptySelection
	}

	warnings, err := Validate(ctx, items, s.avail)
	if err != nil {
		return Result{}, err
	}
	if blocking(warnings) {
		return Result{Warnings: warnings}, ErrBlocked
	}
	if len(warnings) > 0 && !opts.AcknowledgeWarnings {
		return Result{Warnings: warnings}, nil
	}

	lines := Finalize(sess.Context, items)
	sub := Submission{
		ID:          SubmissionID(sess.ID),
		SessionID:   sess.ID,
		Context:     sess.Context,
		Lines:       lines,
		TotalAmount: TotalAmount(lines),
		Warnings:    warnings,
		SubmittedAt: s.now(),
	}
	taskID, err := s.enqueuer.EnqueueSubmission(ctx, sub)
	if err != nil {
		return Result{Warnings: warnings}, fmt.Errorf("booking: enqueue submission: %w", err)
	}

	if err := s.sessions.Close(ctx, sess.ID); err != nil {
		s.logger.Warn("close submitted session", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
	s.logger.Info("selection submitted",
		slog.String("session_id", sess.ID),
		slog.String("submission_id", sub.ID),
		slog.String("type", string(sub.Context)),
		slog.Int("lines", len(lines)),
		slog.Float64("total", sub.TotalAmount),
	)
	return Result{Submission: sub, TaskID: taskID, Warnings: warnings, Submitted: true}, nil
}
