package booking

import (
	"context"
	"fmt"

	"github.com/oohdesk/oohdesk/internal/inventory"
	"github.com/oohdesk/oohdesk/internal/pricing"
)

// Availability reports how many units of an item's inventory are free over
// the item's dates.
type Availability interface {
	Available(ctx context.Context, item pricing.LineItem) (int, error)
}

// InventoryAvailability answers availability from the inventory feed.
type InventoryAvailability struct {
	Feed interface {
		Get(ctx context.Context, id string) (inventory.Record, error)
	}
}

// Available implements Availability.
func (a InventoryAvailability) Available(ctx context.Context, item pricing.LineItem) (int, error) {
	id := item.InventoryID
	if id == "" {
		id = item.ID
	}
	rec, err := a.Feed.Get(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("booking: availability of %s: %w", id, err)
	}
	return rec.AvailableUnits(item.StartDate, item.EndDate), nil
}

// Validate inspects the selection before submission. Missing dates and units
// beyond availability block; an all-zero price is advisory. A nil
// availability skips the unit check.
func Validate(ctx context.Context, items []pricing.LineItem, avail Availability) ([]Warning, error) {
	var warnings []Warning
	allZero := len(items) > 0
	for _, item := range items {
		if item.StartDate.IsZero() || item.EndDate.IsZero() {
			warnings = append(warnings, Warning{
				Code:     WarningMissingDates,
				ItemID:   item.ID,
				Message:  fmt.Sprintf("%s has no occupancy dates", label(item)),
				Blocking: true,
			})
		}
		if item.TotalPrice != 0 || item.HasPricing() {
			allZero = false
		}
		if avail == nil {
			continue
		}
		available, err := avail.Available(ctx, item)
		if err != nil {
			return nil, err
		}
		limit := available + item.InitialUnit
		if item.Unit > limit {
			warnings = append(warnings, Warning{
				Code:     WarningUnitsExceeded,
				ItemID:   item.ID,
				Message:  fmt.Sprintf("%s: %d units requested, %d available", label(item), item.Unit, limit),
				Blocking: true,
			})
		}
	}
	if allZero {
		warnings = append(warnings, Warning{
			Code:    WarningZeroPrices,
			Message: "all selected inventories are priced at zero",
		})
	}
	return warnings, nil
}

func label(item pricing.LineItem) string {
	if item.SpaceName != "" {
		return item.SpaceName
	}
	return item.ID
}
