// Package booking is the submission boundary of booking and proposal sessions.
package booking

import (
	"errors"
	"time"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

var (
	// ErrBlocked indicates blocking warnings prevented a submission.
	ErrBlocked = errors.New("booking: submission blocked")
	// ErrEmptySelection indicates a submission without line items.
	ErrEmptySelection = errors.New("booking: selection is empty")
	// ErrDuplicateSubmission indicates the submission id was already stored.
	ErrDuplicateSubmission = errors.New("booking: submission already stored")
)

// WarningCode classifies a submission warning.
type WarningCode string

const (
	WarningUnitsExceeded WarningCode = "units_exceeded"
	WarningMissingDates  WarningCode = "missing_dates"
	WarningZeroPrices    WarningCode = "zero_prices"
)

// Warning is a user-facing finding raised at submission time.
type Warning struct {
	Code     WarningCode `json:"code"`
	ItemID   string      `json:"itemId,omitempty"`
	Message  string      `json:"message"`
	Blocking bool        `json:"blocking"`
}

// Submission is the finalised payload handed to the worker.
type Submission struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"sessionId"`
	Context     pricing.Context `json:"type"`
	Lines       []WireLine      `json:"inventories"`
	TotalAmount float64         `json:"totalAmount"`
	Warnings    []Warning       `json:"warnings,omitempty"`
	SubmittedAt time.Time       `json:"submittedAt"`
}

// SubmitOptions tunes one submission.
type SubmitOptions struct {
	// AcknowledgeWarnings lets advisory warnings through.
	AcknowledgeWarnings bool
}

// Result is returned by Service.Submit.
type Result struct {
	Submission Submission `json:"submission"`
	TaskID     string     `json:"taskId,omitempty"`
	Warnings   []Warning  `json:"warnings,omitempty"`
	Submitted  bool       `json:"submitted"`
}

func blocking(warnings []Warning) bool {
	for _, w := range warnings {
		if w.Blocking {
			return true
		}
	}
	return false
}
