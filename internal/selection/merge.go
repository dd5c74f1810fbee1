package selection

import (
	"errors"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

// ErrItemNotFound is returned when a line item id is not part of the selection.
var ErrItemNotFound = errors.New("selection: line item not found")

// IndexOf returns the position of id in items or -1.
func IndexOf(items []pricing.LineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// MoveToFront returns a new list with id first and the rest in their original order.
func MoveToFront(items []pricing.LineItem, id string) []pricing.LineItem {
	idx := IndexOf(items, id)
	out := make([]pricing.LineItem, 0, len(items))
	if idx < 0 {
		return append(out, items...)
	}
	out = append(out, items[idx])
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}

// Replace swaps in item for the entry with the same id. Unknown ids leave the
// list untouched.
func Replace(items []pricing.LineItem, item pricing.LineItem) []pricing.LineItem {
	out := append([]pricing.LineItem(nil), items...)
	if idx := IndexOf(out, item.ID); idx >= 0 {
		out[idx] = item
	}
	return out
}

// Remove drops id from the list.
func Remove(items []pricing.LineItem, id string) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// BroadcastPrintingMounting copies the printing and mounting inputs of source
// onto every other item, each priced with its own area.
func BroadcastPrintingMounting(items []pricing.LineItem, source pricing.LineItem) []pricing.LineItem {
	return broadcast(items, source, func(t *pricing.LineItem) {
		t.PrintingCostPerSqft = source.PrintingCostPerSqft
		t.PrintingGstPercentage = source.PrintingGstPercentage
		t.MountingCostPerSqft = source.MountingCostPerSqft
		t.MountingGstPercentage = source.MountingGstPercentage
		t.TotalPrintingCost = pricing.TotalPrintingCost(*t)
		t.TotalMountingCost = pricing.TotalMountingCost(*t)
	})
}

// BroadcastDiscount copies the discount settings of source onto every other
// item, each discounted against its own display cost or total.
func BroadcastDiscount(items []pricing.LineItem, source pricing.LineItem) []pricing.LineItem {
	return broadcast(items, source, func(t *pricing.LineItem) {
		t.DiscountOn = source.DiscountOn
		t.Discount = source.Discount
		t.DiscountedDisplayCost = pricing.DiscountedDisplayCost(*t)
	})
}

func broadcast(items []pricing.LineItem, source pricing.LineItem, copyFields func(*pricing.LineItem)) []pricing.LineItem {
	out := make([]pricing.LineItem, len(items))
	for i, item := range items {
		if item.ID == source.ID {
			out[i] = item
			continue
		}
		target := item.Clone()
		copyFields(&target)
		target.TotalPrice = pricing.TotalPrice(target)
		target.PriceChanged = true
		out[i] = target
	}
	return out
}

// Merge reconciles an edited item into items: the matching entry is
// replaced and the apply-for-all flags of edited are broadcast. When edited
// is not part of the list nothing changes.
func Merge(items []pricing.LineItem, edited pricing.LineItem) []pricing.LineItem {
	if IndexOf(items, edited.ID) < 0 {
		return items
	}
	out := Replace(items, edited)
	if edited.ApplyPrintingMountingCostForAll {
		out = BroadcastPrintingMounting(out, edited)
	}
	if edited.ApplyDiscountForAll {
		out = BroadcastDiscount(out, edited)
	}
	return out
}
