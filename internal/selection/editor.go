package selection

import (
	"github.com/oohdesk/oohdesk/internal/pricing"
)

// Flags are the apply-for-all switches of a line item.
type Flags struct {
	ApplyPrintingMountingCostForAll bool `json:"applyPrintingMountingCostForAll"`
	ApplyDiscountForAll             bool `json:"applyDiscountForAll"`
	SubjectToExtension              bool `json:"subjectToExtension"`
}

// Editor runs one edit cycle against a store: recompute the edited item,
// merge it back, broadcast and publish in a single store update.
type Editor struct {
	engine *pricing.Engine
}

// NewEditor constructs an Editor.
func NewEditor(engine *pricing.Engine) *Editor {
	return &Editor{engine: engine}
}

// Edit applies one field change to the item with id.
func (e *Editor) Edit(store *Store, id string, field pricing.Field, value any) (pricing.Patch, pricing.LineItem, error) {
	var (
		patch  pricing.Patch
		edited pricing.LineItem
		found  bool
	)
	store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		idx := IndexOf(items, id)
		if idx < 0 {
			return items
		}
		found = true
		patch = e.engine.OnFieldChange(field, value, items[idx])
		edited = patch.Apply(items[idx])
		return Merge(items, edited)
	})
	if !found {
		return pricing.Patch{}, pricing.LineItem{}, ErrItemNotFound
	}
	return patch, edited, nil
}

// Commit merges an item recomputed elsewhere. Items missing from the
// selection are ignored.
func (e *Editor) Commit(store *Store, edited pricing.LineItem) []pricing.LineItem {
	return store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		return Merge(items, edited)
	})
}

// SetFlags updates the switches of id and broadcasts when they are on.
func (e *Editor) SetFlags(store *Store, id string, flags Flags) (pricing.LineItem, error) {
	var (
		edited pricing.LineItem
		found  bool
	)
	store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		idx := IndexOf(items, id)
		if idx < 0 {
			return items
		}
		found = true
		edited = items[idx].Clone()
		edited.ApplyPrintingMountingCostForAll = flags.ApplyPrintingMountingCostForAll
		edited.ApplyDiscountForAll = flags.ApplyDiscountForAll
		edited.SubjectToExtension = flags.SubjectToExtension
		return Merge(items, edited)
	})
	if !found {
		return pricing.LineItem{}, ErrItemNotFound
	}
	return edited, nil
}

// Add appends item after deriving its outputs. An id already selected is
// left as is and reported as not added.
func (e *Editor) Add(store *Store, item pricing.LineItem) (pricing.LineItem, bool) {
	added := false
	item = e.engine.Recompute(item)
	store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		if IndexOf(items, item.ID) >= 0 {
			return items
		}
		added = true
		return append(items, item)
	})
	return item, added
}

// Deselect removes id from the selection.
func (e *Editor) Deselect(store *Store, id string) error {
	found := false
	store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		if IndexOf(items, id) < 0 {
			return items
		}
		found = true
		return Remove(items, id)
	})
	if !found {
		return ErrItemNotFound
	}
	return nil
}

// Open moves id to the front of the selection and returns the values that
// seed its price form.
func (e *Editor) Open(store *Store, id string) (pricing.LineItem, error) {
	var (
		seed  pricing.LineItem
		found bool
	)
	store.Update(func(items []pricing.LineItem) []pricing.LineItem {
		idx := IndexOf(items, id)
		if idx < 0 {
			return items
		}
		found = true
		seed = Seed(items[idx])
		return MoveToFront(items, id)
	})
	if !found {
		return pricing.LineItem{}, ErrItemNotFound
	}
	return seed, nil
}

// Seed returns the form values for item: its own values when it was priced
// before, otherwise defaults.
func Seed(item pricing.LineItem) pricing.LineItem {
	if item.PriceChanged || item.HasPricing() {
		return item.Clone()
	}
	return Defaults(item)
}

// Defaults keeps the identity, dimensions and schedule of item and resets
// every price input and output.
func Defaults(item pricing.LineItem) pricing.LineItem {
	return pricing.LineItem{
		ID:                 item.ID,
		InventoryID:        item.InventoryID,
		Context:            item.Context,
		SpaceName:          item.SpaceName,
		City:               item.City,
		Dimensions:         append([]pricing.Dimension(nil), item.Dimensions...),
		Unit:               item.Unit,
		InitialUnit:        item.InitialUnit,
		AreaBasis:          item.AreaBasis,
		StartDate:          item.StartDate,
		EndDate:            item.EndDate,
		DiscountOn:         pricing.DiscountOnDisplayCost,
		SubjectToExtension: item.SubjectToExtension,
	}
}
