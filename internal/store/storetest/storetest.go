// Package storetest holds the behaviour every store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/store"
)

// Factory opens an empty store for one subtest.
type Factory func(t *testing.T) store.Store

func Item(title string, cost int64, priority int, iv core.Interval) core.Item {
	return core.Item{Title: title, Cost: core.Money{Cents: cost}, Priority: priority, Interval: iv}
}

func titles(items []store.StoredItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

// Run executes the shared suite against stores built by open.
func Run(t *testing.T, open Factory) {
	t.Run("insert assigns distinct ids", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		id1, err := s.Insert(ctx, "", Item("Rent", 90000, 10, core.Monthly))
		require.NoError(t, err)
		id2, err := s.Insert(ctx, "", Item("Rent", 90000, 10, core.Monthly))
		require.NoError(t, err)
		require.NotEmpty(t, id1)
		require.NotEqual(t, id1, id2)

		got, err := s.Search(ctx, "", store.ByTitle("Rent"))
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, store.DefaultTable, got[0].Table)
	})

	t.Run("insert rejects malformed items", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Insert(ctx, "", core.Item{Title: "", Cost: core.Money{Cents: 1}, Interval: core.Weekly})
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)

		_, err = s.Insert(ctx, "", Item("Debt", -5, 1, core.Weekly))
		require.ErrorIs(t, err, core.ErrNegativeCost)

		all, err := s.Search(ctx, "", store.All())
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("search keeps insertion order", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, it := range []core.Item{
			Item("c", 1, 1, core.Weekly),
			Item("a", 2, 9, core.Monthly),
			Item("b", 3, 1, core.Fortnightly),
		} {
			_, err := s.Insert(ctx, "", it)
			require.NoError(t, err)
		}

		all, err := s.Search(ctx, "", store.All())
		require.NoError(t, err)
		require.Equal(t, []string{"c", "a", "b"}, titles(all))

		byPriority, err := s.Search(ctx, "", store.ByPriority(1))
		require.NoError(t, err)
		require.Equal(t, []string{"c", "b"}, titles(byPriority))

		byInterval, err := s.Search(ctx, "", store.ByInterval(core.Monthly))
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, titles(byInterval))
		require.Equal(t, int64(2), byInterval[0].Cost.Cents)

		none, err := s.Search(ctx, "", store.ByCost(42))
		require.NoError(t, err)
		require.Empty(t, none)
	})

	t.Run("tables are isolated", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Insert(ctx, "holiday", Item("Flights", 40000, 5, core.Monthly))
		require.NoError(t, err)
		_, err = s.Insert(ctx, "  ", Item("Rent", 90000, 10, core.Monthly))
		require.NoError(t, err)

		def, err := s.Search(ctx, store.DefaultTable, store.All())
		require.NoError(t, err)
		require.Equal(t, []string{"Rent"}, titles(def))

		hol, err := s.Search(ctx, "holiday", store.All())
		require.NoError(t, err)
		require.Equal(t, []string{"Flights"}, titles(hol))
		require.Equal(t, "holiday", hol[0].Table)

		tables, err := s.Tables(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{store.DefaultTable, "holiday"}, tables)
	})

	t.Run("delete removes every match", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for _, it := range []core.Item{
			Item("Gym", 3000, 2, core.Monthly),
			Item("Food", 5000, 9, core.Weekly),
			Item("Gym", 3000, 2, core.Monthly),
		} {
			_, err := s.Insert(ctx, "", it)
			require.NoError(t, err)
		}

		removed, err := s.Delete(ctx, "", store.ByTitle("Gym"))
		require.NoError(t, err)
		require.Equal(t, 2, removed)

		removed, err = s.Delete(ctx, "", store.ByTitle("Gym"))
		require.NoError(t, err)
		require.Zero(t, removed)

		all, err := s.Search(ctx, "", store.All())
		require.NoError(t, err)
		require.Equal(t, []string{"Food"}, titles(all))
	})

	t.Run("delete needs a predicate", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Insert(ctx, "", Item("Food", 5000, 9, core.Weekly))
		require.NoError(t, err)

		_, err = s.Delete(ctx, "", store.All())
		require.ErrorIs(t, err, store.ErrInvalidQuery)

		all, err := s.Search(ctx, "", store.All())
		require.NoError(t, err)
		require.Len(t, all, 1)
	})
}
