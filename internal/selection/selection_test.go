package selection

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func item(id string, width, height float64) pricing.LineItem {
	return pricing.Recompute(pricing.LineItem{
		ID:         id,
		Context:    pricing.ContextBooking,
		Dimensions: []pricing.Dimension{{Width: width, Height: height}},
		Unit:       1,
		StartDate:  day("2024-01-01"),
		EndDate:    day("2024-03-31"),
		DiscountOn: pricing.DiscountOnDisplayCost,
	})
}

func ids(items []pricing.LineItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMoveToFrontDoesNotMutateInput(t *testing.T) {
	list := []pricing.LineItem{item("a", 1, 1), item("b", 1, 1), item("c", 1, 1), item("d", 1, 1)}
	got := MoveToFront(list, "c")
	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(got))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(list))

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(MoveToFront(list, "zz")))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(MoveToFront(list, "a")))
}

func TestReplaceUnknownIsNoop(t *testing.T) {
	list := []pricing.LineItem{item("a", 1, 1)}
	other := item("x", 2, 2)
	assert.Equal(t, list, Replace(list, other))
	assert.Equal(t, list, Merge(list, other))
}

func TestBroadcastPrintingScopesToOwnArea(t *testing.T) {
	store := NewStore(item("a", 10, 10), item("b", 10, 20), item("c", 5, 4))
	editor := NewEditor(pricing.NewEngine(nil))

	_, err := editor.SetFlags(store, "a", Flags{ApplyPrintingMountingCostForAll: true})
	require.NoError(t, err)
	_, _, err = editor.Edit(store, "a", pricing.FieldPrintingCostPerSqft, 10)
	require.NoError(t, err)

	got := store.Get()
	totals := map[string]float64{}
	for _, it := range got {
		assert.Equal(t, 10.0, it.PrintingCostPerSqft, it.ID)
		totals[it.ID] = it.TotalPrintingCost
	}
	assert.Equal(t, map[string]float64{"a": 1000, "b": 2000, "c": 200}, totals)
	assert.Equal(t, 2000.0, got[1].TotalPrice)
}

func TestBroadcastDiscountRecomputesPerItem(t *testing.T) {
	a, b := item("a", 10, 10), item("b", 10, 20)
	a.DisplayCostPerMonth, b.DisplayCostPerMonth = 100, 300
	a, b = pricing.Recompute(a), pricing.Recompute(b)
	store := NewStore(a, b)
	editor := NewEditor(pricing.NewEngine(nil))

	_, err := editor.SetFlags(store, "a", Flags{ApplyDiscountForAll: true})
	require.NoError(t, err)
	_, _, err = editor.Edit(store, "a", pricing.FieldDiscount, "10")
	require.NoError(t, err)

	got := store.Get()
	assert.Equal(t, 270.0, got[0].DiscountedDisplayCost)
	assert.Equal(t, 10.0, got[1].Discount)
	assert.Equal(t, 810.0, got[1].DiscountedDisplayCost)
	assert.Equal(t, 810.0, got[1].TotalPrice)
	assert.True(t, got[1].PriceChanged)
}

func TestNoBroadcastWithoutFlag(t *testing.T) {
	store := NewStore(item("a", 10, 10), item("b", 10, 20))
	editor := NewEditor(pricing.NewEngine(nil))
	_, _, err := editor.Edit(store, "a", pricing.FieldPrintingCostPerSqft, 10)
	require.NoError(t, err)
	got := store.Get()
	assert.Equal(t, 10.0, got[0].PrintingCostPerSqft)
	assert.Equal(t, 0.0, got[1].PrintingCostPerSqft)
}

func TestEditUnknownItem(t *testing.T) {
	store := NewStore(item("a", 1, 1))
	editor := NewEditor(pricing.NewEngine(nil))
	_, _, err := editor.Edit(store, "missing", pricing.FieldDiscount, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, editor.Deselect(store, "missing"), ErrItemNotFound)
}

func TestEditPublishesOnceWithCompleteList(t *testing.T) {
	store := NewStore(item("a", 10, 10), item("b", 10, 20), item("c", 1, 1))
	editor := NewEditor(pricing.NewEngine(nil))
	_, err := editor.SetFlags(store, "a", Flags{ApplyPrintingMountingCostForAll: true})
	require.NoError(t, err)

	var published [][]pricing.LineItem
	cancel := store.Subscribe(func(items []pricing.LineItem) {
		published = append(published, items)
	})
	defer cancel()

	_, _, err = editor.Edit(store, "a", pricing.FieldMountingCostPerSqft, 2)
	require.NoError(t, err)

	require.Len(t, published, 1)
	for _, it := range published[0] {
		assert.Equal(t, 2.0, it.MountingCostPerSqft, it.ID)
	}
}

func TestSubscribeCancel(t *testing.T) {
	store := NewStore()
	calls := 0
	cancel := store.Subscribe(func([]pricing.LineItem) { calls++ })
	store.Set([]pricing.LineItem{item("a", 1, 1)})
	cancel()
	store.Clear()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, store.Len())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	store := NewStore(item("a", 10, 10))
	got := store.Get()
	got[0].Dimensions[0].Width = 99
	got[0].DisplayCostPerMonth = 5
	fresh := store.Get()
	assert.Equal(t, 10.0, fresh[0].Dimensions[0].Width)
	assert.Equal(t, 0.0, fresh[0].DisplayCostPerMonth)
}

func TestStoreConcurrentUpdates(t *testing.T) {
	store := NewStore()
	editor := NewEditor(pricing.NewEngine(nil))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			editor.Add(store, item(string(rune('A'+i)), 1, 1))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, store.Len())
}

func TestOpenSeedsFromEditedOrDefaults(t *testing.T) {
	priced := item("a", 10, 20)
	priced.DisplayCostPerMonth = 30000
	priced.TradedAmount = 10
	priced = pricing.Recompute(priced)
	fresh := item("b", 10, 20)
	fresh.TotalDisplayCost = 123 // stale output without any input

	store := NewStore(fresh, priced, item("c", 1, 1))
	editor := NewEditor(pricing.NewEngine(nil))

	seed, err := editor.Open(store, "a")
	require.NoError(t, err)
	assert.Equal(t, 30000.0, seed.DisplayCostPerMonth)
	assert.Equal(t, 10.0, seed.TradedAmount)
	assert.Equal(t, []string{"a", "b", "c"}, ids(store.Get()))

	seed, err = editor.Open(store, "b")
	require.NoError(t, err)
	assert.Equal(t, 0.0, seed.TotalDisplayCost)
	assert.Equal(t, pricing.DiscountOnDisplayCost, seed.DiscountOn)
	assert.Equal(t, fresh.Dimensions, seed.Dimensions)
	assert.Equal(t, []string{"b", "a", "c"}, ids(store.Get()))

	_, err = editor.Open(store, "zz")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAddSkipsDuplicates(t *testing.T) {
	store := NewStore()
	editor := NewEditor(pricing.NewEngine(nil))
	_, added := editor.Add(store, item("a", 1, 1))
	assert.True(t, added)
	_, added = editor.Add(store, item("a", 1, 1))
	assert.False(t, added)
	assert.Equal(t, 1, store.Len())
}
