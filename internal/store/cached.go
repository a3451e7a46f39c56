package store

import (
	"context"

	"budget/internal/cache"
	"budget/internal/core"
)

// Cached is a read-through decorator that keeps each table's full contents in
// a cache and answers filtered searches from it. Mutations invalidate the
// affected table.
type Cached struct {
	next  Store
	cache cache.Cache[[]StoredItem]
}

var _ Store = (*Cached)(nil)

func NewCached(next Store, c cache.Cache[[]StoredItem]) *Cached {
	return &Cached{next: next, cache: c}
}

func (s *Cached) Insert(ctx context.Context, table string, it core.Item) (string, error) {
	id, err := s.next.Insert(ctx, table, it)
	s.cache.Delete(TableName(table))
	return id, err
}

func (s *Cached) Search(ctx context.Context, table string, q Query) ([]StoredItem, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	key := TableName(table)
	all, ok := s.cache.Get(key)
	if !ok {
		var err error
		all, err = s.next.Search(ctx, table, All())
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, all)
	}
	return Filter(all, q), nil
}

func (s *Cached) Delete(ctx context.Context, table string, q Query) (int, error) {
	removed, err := s.next.Delete(ctx, table, q)
	if err != nil || removed > 0 {
		s.cache.Delete(TableName(table))
	}
	return removed, err
}

func (s *Cached) Tables(ctx context.Context) ([]string, error) {
	return s.next.Tables(ctx)
}

func (s *Cached) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// Filter returns a fresh slice of the items matching q, keeping their order.
func Filter(items []StoredItem, q Query) []StoredItem {
	out := make([]StoredItem, 0, len(items))
	for _, it := range items {
		if q.Match(it.Item) {
			out = append(out, it)
		}
	}
	return out
}
