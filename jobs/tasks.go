package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/oohdesk/oohdesk/internal/booking"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueCritical carries submissions ahead of housekeeping work.
	QueueCritical = "critical"
	// TaskSubmitSelection persists a finalised booking or proposal selection.
	TaskSubmitSelection = "booking:submit"
)

// NewSubmitSelectionTask constructs the submission task. The submission id
// doubles as the task id so a retried enqueue cannot duplicate it.
func NewSubmitSelectionTask(sub booking.Submission) (*asynq.Task, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSubmitSelection, body,
		asynq.Queue(QueueCritical),
		asynq.TaskID(sub.ID),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	), nil
}
