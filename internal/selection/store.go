// Package selection owns the shared list of line items selected in a booking
// or proposal editing session.
package selection

import (
	"sync"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

// Store is the single mutation point for a session's selection list.
// Every mutation publishes the complete resulting list exactly once.
// Subscribers may read the store but must not mutate it.
type Store struct {
	publishMu sync.Mutex
	mu        sync.RWMutex
	items     []pricing.LineItem
	subs      map[int]func([]pricing.LineItem)
	nextSub   int
}

// NewStore constructs a store seeded with items.
func NewStore(items ...pricing.LineItem) *Store {
	return &Store{items: copyItems(items), subs: make(map[int]func([]pricing.LineItem))}
}

// Get returns a copy of the current list.
func (s *Store) Get() []pricing.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyItems(s.items)
}

// Set replaces the list.
func (s *Store) Set(items []pricing.LineItem) {
	s.Update(func([]pricing.LineItem) []pricing.LineItem { return items })
}

// Clear empties the list.
func (s *Store) Clear() {
	s.Set(nil)
}

// Update applies fn to a copy of the list and stores its result. fn runs at
// most once per call and concurrent updates are serialised. Subscribers see
// the result only after fn returns.
func (s *Store) Update(fn func([]pricing.LineItem) []pricing.LineItem) []pricing.LineItem {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	next := copyItems(fn(s.Get()))

	s.mu.Lock()
	s.items = next
	subs := make([]func([]pricing.LineItem), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(copyItems(next))
	}
	return copyItems(next)
}

// Subscribe registers fn for every published list. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func([]pricing.LineItem)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Len returns the number of selected items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func copyItems(items []pricing.LineItem) []pricing.LineItem {
	if items == nil {
		return nil
	}
	out := make([]pricing.LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
