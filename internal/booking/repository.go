package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oohdesk/oohdesk/internal/inventory"
	"github.com/oohdesk/oohdesk/internal/platform/db"
	"github.com/oohdesk/oohdesk/internal/pricing"
)

// Repository persists finalised submissions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertSubmission = `INSERT INTO submissions (id, session_id, context, total_amount, payload, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

const insertSubmissionLine = `INSERT INTO submission_lines
(submission_id, line_item_id, inventory_id, unit, start_date, end_date, total_price)
VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, NULLIF($6, '')::date, $7)`

const appendBookingRange = `UPDATE inventories
SET payload = jsonb_set(payload, '{bookingRange}', COALESCE(payload->'bookingRange', '[]'::jsonb) || $2::jsonb)
WHERE id = $1`

// SaveSubmission stores sub and its lines in one transaction. Booking
// submissions also reserve their units on the inventory. A submission id
// already stored yields ErrDuplicateSubmission.
func (r *Repository) SaveSubmission(ctx context.Context, sub Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("booking: encode submission: %w", err)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, insertSubmission, sub.ID, sub.SessionID, string(sub.Context), sub.TotalAmount, payload, sub.SubmittedAt)
		if err != nil {
			return fmt.Errorf("booking: insert submission: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrDuplicateSubmission
		}
		for _, line := range sub.Lines {
			if _, err := tx.Exec(ctx, insertSubmissionLine, sub.ID, line.ID, line.InventoryID, line.Unit, line.StartDate, line.EndDate, line.TotalPrice); err != nil {
				return fmt.Errorf("booking: insert line %s: %w", line.ID, err)
			}
			entry, ok := bookingRangeEntry(sub, line)
			if !ok {
				continue
			}
			if _, err := tx.Exec(ctx, appendBookingRange, line.InventoryID, entry); err != nil {
				return fmt.Errorf("booking: reserve %s: %w", line.InventoryID, err)
			}
		}
		return nil
	})
}

// bookingRangeEntry renders the occupancy a booking line adds to its
// inventory. Proposals and undated lines reserve nothing.
func bookingRangeEntry(sub Submission, line WireLine) ([]byte, bool) {
	if sub.Context != pricing.ContextBooking || line.StartDate == "" || line.EndDate == "" || line.Unit <= 0 {
		return nil, false
	}
	start, err := time.Parse(wireDate, line.StartDate)
	if err != nil {
		return nil, false
	}
	end, err := time.Parse(wireDate, line.EndDate)
	if err != nil {
		return nil, false
	}
	entry := []inventory.BookingRange{{BookingID: sub.ID, StartDate: start, EndDate: end, Unit: line.Unit}}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, false
	}
	return data, true
}
