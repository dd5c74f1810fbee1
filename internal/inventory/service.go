package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

// Loader abstracts the feed backing store.
type Loader interface {
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter Filter) ([]Record, error)
}

// Service exposes the read-only inventory feed to the editing surfaces.
type Service struct {
	loader Loader
	group  singleflight.Group
}

// NewService builds Service.
func NewService(loader Loader) *Service {
	return &Service{loader: loader}
}

// Get returns one record. Concurrent lookups of the same id share one load.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	val, err, _ := s.do(ctx, "get:"+id, func(ctx context.Context) (interface{}, error) {
		return s.loader.Get(ctx, id)
	})
	if err != nil {
		return Record{}, err
	}
	return val.(Record), nil
}

// List returns the records matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	key := fmt.Sprintf("list:%s:%s:%d:%d", strings.ToLower(filter.City), strings.ToLower(filter.Search), filter.Limit, filter.Offset)
	val, err, shared := s.do(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.loader.List(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	records := val.([]Record)
	if shared {
		records = append([]Record(nil), records...)
	}
	return records, nil
}

// Instantiate loads the record and turns it into a fresh line item for ctx.
func (s *Service) Instantiate(ctx context.Context, id string, ctxType pricing.Context) (pricing.LineItem, Record, error) {
	if !ctxType.Valid() {
		return pricing.LineItem{}, Record{}, errors.New("inventory: invalid context")
	}
	rec, err := s.Get(ctx, id)
	if err != nil {
		return pricing.LineItem{}, Record{}, err
	}
	return rec.ToLineItem(ctxType), rec, nil
}

func (s *Service) do(ctx context.Context, key string, fn func(context.Context) (interface{}, error)) (interface{}, error, bool) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		return res.Val, res.Err, res.Shared
	}
}
