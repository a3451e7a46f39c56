// Package store defines the item store contract shared by every backend.
package store

import (
	"context"
	"strings"

	"budget/internal/core"
)

// DefaultTable holds items when no table name is given.
const DefaultTable = "_default"

// StoredItem is an item together with the identifier its store assigned.
type StoredItem struct {
	ID    string
	Table string
	core.Item
}

// Ports implemented by every backend.
type (
	ItemWriter interface {
		// Insert validates and stores the item, returning its document id.
		Insert(ctx context.Context, table string, it core.Item) (id string, err error)
	}

	ItemSearcher interface {
		// Search returns matching items in insertion order. All() returns the whole table.
		Search(ctx context.Context, table string, q Query) ([]StoredItem, error)
	}

	ItemDeleter interface {
		// Delete removes every match. Zero matches is not an error.
		Delete(ctx context.Context, table string, q Query) (removed int, err error)
	}

	TableLister interface {
		// Tables lists the default table and every table holding items.
		Tables(ctx context.Context) ([]string, error)
	}

	Store interface {
		ItemWriter
		ItemSearcher
		ItemDeleter
		TableLister
		Close() error
	}
)

// TableName maps an optional user supplied table name to a stored one.
func TableName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultTable
	}
	return name
}

// Items strips store metadata.
func Items(stored []StoredItem) []core.Item {
	items := make([]core.Item, len(stored))
	for i, s := range stored {
		items[i] = s.Item
	}
	return items
}

// WithDefault returns tables with DefaultTable first and no duplicates.
func WithDefault(tables []string) []string {
	out := []string{DefaultTable}
	for _, t := range tables {
		if t != DefaultTable {
			out = append(out, t)
		}
	}
	return out
}
