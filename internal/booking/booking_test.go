package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oohdesk/oohdesk/internal/inventory"
	"github.com/oohdesk/oohdesk/internal/pricing"
	"github.com/oohdesk/oohdesk/internal/selection"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func pricedItem(id string, perMonth float64) pricing.LineItem {
	return pricing.Recompute(pricing.LineItem{
		ID:                       id,
		InventoryID:              id,
		SpaceName:                "Space " + id,
		Context:                  pricing.ContextBooking,
		Dimensions:               []pricing.Dimension{{Width: 10, Height: 20}},
		Unit:                     1,
		StartDate:                day("2024-01-01"),
		EndDate:                  day("2024-03-31"),
		DisplayCostPerMonth:      perMonth,
		DisplayCostGstPercentage: 18,
		DiscountOn:               pricing.DiscountOnDisplayCost,
	})
}

type fixedAvailability map[string]int

func (f fixedAvailability) Available(ctx context.Context, item pricing.LineItem) (int, error) {
	n, ok := f[item.ID]
	if !ok {
		return 0, errors.New("unknown")
	}
	return n, nil
}

func TestValidateBlockingAndAdvisory(t *testing.T) {
	ctx := context.Background()
	ok := pricedItem("a", 30000)
	undated := pricedItem("b", 100)
	undated.EndDate = time.Time{}
	greedy := pricedItem("c", 100)
	greedy.Unit = 3

	warnings, err := Validate(ctx, []pricing.LineItem{ok, undated, greedy}, fixedAvailability{"a": 1, "b": 1, "c": 2})
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	assert.Equal(t, WarningMissingDates, warnings[0].Code)
	assert.Equal(t, "b", warnings[0].ItemID)
	assert.True(t, warnings[0].Blocking)
	assert.Equal(t, WarningUnitsExceeded, warnings[1].Code)
	assert.True(t, blocking(warnings))

	greedy.InitialUnit = 1
	warnings, err = Validate(ctx, []pricing.LineItem{greedy}, fixedAvailability{"c": 2})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	zero := pricedItem("z", 0)
	warnings, err = Validate(ctx, []pricing.LineItem{zero}, nil)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningZeroPrices, warnings[0].Code)
	assert.False(t, blocking(warnings))

	_, err = Validate(ctx, []pricing.LineItem{ok}, fixedAvailability{})
	assert.Error(t, err)
}

type stubFeed map[string]inventory.Record

func (f stubFeed) Get(ctx context.Context, id string) (inventory.Record, error) {
	rec, ok := f[id]
	if !ok {
		return inventory.Record{}, inventory.ErrNotFound
	}
	return rec, nil
}

func TestInventoryAvailability(t *testing.T) {
	avail := InventoryAvailability{Feed: stubFeed{"a": {
		ID:   "a",
		Unit: 4,
		BookingRange: []inventory.BookingRange{
			{StartDate: day("2024-02-01"), EndDate: day("2024-02-10"), Unit: 3},
		},
	}}}
	n, err := avail.Available(context.Background(), pricedItem("a", 1))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = avail.Available(context.Background(), pricedItem("missing", 1))
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestFinalizeUsesContextDiscountName(t *testing.T) {
	item := pricedItem("a", 30000)
	item.Discount = 10
	item.DisplayCostPerSqFt = 150.004
	item = pricing.Recompute(item)
	item.ApplyDiscountForAll = true

	booking := Finalize(pricing.ContextBooking, []pricing.LineItem{item})
	raw, err := json.Marshal(booking[0])
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 95580.0, decoded["discountedPriceOverDisplayCost"])
	assert.NotContains(t, decoded, "discountedDisplayCost")
	assert.NotContains(t, decoded, "applyDiscountForAll")
	assert.NotContains(t, decoded, "dimension")
	assert.NotContains(t, decoded, "spaceName")
	assert.Equal(t, "2024-01-01", decoded["startDate"])

	proposal := Finalize(pricing.ContextProposal, []pricing.LineItem{item})
	raw, err = json.Marshal(proposal[0])
	require.NoError(t, err)
	decoded = map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 95580.0, decoded["discountedDisplayCost"])
	assert.NotContains(t, decoded, "discountedPriceOverDisplayCost")

	var back WireLine
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, proposal[0], back)
}

func TestFinalizeRoundsMoney(t *testing.T) {
	item := pricedItem("a", 0)
	item.TradedAmount = 10.005
	item.TotalPrice = 1.115
	lines := Finalize(pricing.ContextBooking, []pricing.LineItem{item})
	assert.Equal(t, 10.01, lines[0].TradedAmount)
	assert.Equal(t, 1.12, lines[0].TotalPrice)
	assert.Equal(t, pricing.DiscountOnDisplayCost, lines[0].DiscountOn)
}

func TestSummarize(t *testing.T) {
	items := []pricing.LineItem{pricedItem("a", 30000), pricedItem("b", 100)}
	s := Summarize(pricing.ContextBooking, items)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 106554.0, s.Total)
	assert.Equal(t, 106200.0, s.Lines[0].Breakdown.Total)
	assert.True(t, strings.HasPrefix(s.TotalDisplay, "₹"))
	assert.Equal(t, "₹354.00", s.Lines[1].Display)
}

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹0.00", FormatINR(0))
	assert.Equal(t, "₹750.50", FormatINR(750.5))
	assert.Equal(t, "-₹750.00", FormatINR(-750))
}

func TestBookingRangeEntry(t *testing.T) {
	sub := Submission{ID: "sub-1", Context: pricing.ContextBooking}
	line := WireLine{InventoryID: "a", Unit: 2, StartDate: "2024-01-01", EndDate: "2024-01-31"}
	data, ok := bookingRangeEntry(sub, line)
	require.True(t, ok)
	var ranges []inventory.BookingRange
	require.NoError(t, json.Unmarshal(data, &ranges))
	require.Len(t, ranges, 1)
	assert.Equal(t, "sub-1", ranges[0].BookingID)
	assert.Equal(t, 2, ranges[0].Unit)
	assert.True(t, ranges[0].StartDate.Equal(day("2024-01-01")))

	_, ok = bookingRangeEntry(Submission{Context: pricing.ContextProposal}, line)
	assert.False(t, ok)
	line.EndDate = ""
	_, ok = bookingRangeEntry(sub, line)
	assert.False(t, ok)
}

type stubEnqueuer struct {
	err      error
	attempts []string
	subs     []Submission
}

func (e *stubEnqueuer) EnqueueSubmission(ctx context.Context, sub Submission) (string, error) {
	e.attempts = append(e.attempts, sub.ID)
	if e.err != nil {
		return "", e.err
	}
	e.subs = append(e.subs, sub)
	return "task-1", nil
}

func newSession(t *testing.T, items ...pricing.LineItem) (*selection.Registry, *selection.Session) {
	t.Helper()
	reg := selection.NewRegistry(nil, nil)
	sess, err := reg.Create(context.Background(), pricing.ContextBooking)
	require.NoError(t, err)
	sess.Store.Set(items)
	return reg, sess
}

func TestSubmitClearsOnlyAfterEnqueue(t *testing.T) {
	ctx := context.Background()
	reg, sess := newSession(t, pricedItem("a", 30000))
	enq := &stubEnqueuer{err: errors.New("redis down")}
	svc := NewService(reg, nil, enq, nil)

	_, err := svc.Submit(ctx, sess.ID, SubmitOptions{})
	require.Error(t, err)
	assert.Equal(t, 1, sess.Store.Len())
	assert.Equal(t, 30000.0, sess.Store.Get()[0].DisplayCostPerMonth)

	enq.err = nil
	res, err := svc.Submit(ctx, sess.ID, SubmitOptions{})
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.Equal(t, "task-1", res.TaskID)
	assert.Equal(t, 106200.0, res.Submission.TotalAmount)
	assert.Equal(t, pricing.ContextBooking, res.Submission.Context)
	assert.Equal(t, 0, sess.Store.Len())
	require.Len(t, enq.subs, 1)
	require.Len(t, enq.attempts, 2)
	assert.Equal(t, enq.attempts[0], enq.attempts[1])
	assert.Equal(t, SubmissionID(sess.ID), res.Submission.ID)

	_, err = reg.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, selection.ErrSessionNotFound)
}

func TestSubmitBlockedAndAdvisory(t *testing.T) {
	ctx := context.Background()
	undated := pricedItem("a", 100)
	undated.StartDate = time.Time{}
	reg, sess := newSession(t, undated)
	enq := &stubEnqueuer{}
	svc := NewService(reg, nil, enq, nil)

	res, err := svc.Submit(ctx, sess.ID, SubmitOptions{AcknowledgeWarnings: true})
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Len(t, res.Warnings, 1)
	assert.Equal(t, 1, sess.Store.Len())

	reg, sess = newSession(t, pricedItem("z", 0))
	svc = NewService(reg, nil, enq, nil)
	res, err = svc.Submit(ctx, sess.ID, SubmitOptions{})
	require.NoError(t, err)
	assert.False(t, res.Submitted)
	assert.Empty(t, enq.subs)

	res, err = svc.Submit(ctx, sess.ID, SubmitOptions{AcknowledgeWarnings: true})
	require.NoError(t, err)
	assert.True(t, res.Submitted)
	assert.Len(t, enq.subs, 1)
}

func TestSubmissionIDPerSession(t *testing.T) {
	a := SubmissionID("3f5e1b9c-0d2a-4c6e-8f71-2b9d4a6c8e10")
	assert.Equal(t, a, SubmissionID("3f5e1b9c-0d2a-4c6e-8f71-2b9d4a6c8e10"))
	assert.NotEqual(t, a, SubmissionID("9a0b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"))
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestSubmitEmptySelection(t *testing.T) {
	reg, sess := newSession(t)
	svc := NewService(reg, nil, &stubEnqueuer{}, nil)
	_, err := svc.Submit(context.Background(), sess.ID, SubmitOptions{})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = svc.Submit(context.Background(), "nope", SubmitOptions{})
	assert.ErrorIs(t, err, selection.ErrSessionNotFound)
}
