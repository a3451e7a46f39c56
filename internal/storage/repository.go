package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"budget/internal/core"
	"budget/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the SQL backed item store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ store.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert implements store.ItemWriter
func (r *SQLiteRepository) Insert(ctx context.Context, table string, it core.Item) (string, error) {
	if err := it.Validate(); err != nil {
		return "", err
	}

	row, err := r.queries.CreateItem(ctx, CreateItemParams{
		TableName: store.TableName(table),
		Title:     it.Title,
		Cost:      it.Cost.Cents,
		Priority:  int64(it.Priority),
		Interval:  string(it.Interval),
	})
	if err != nil {
		return "", fmt.Errorf("create item: %w", err)
	}

	slog.DebugContext(ctx, "Item saved to SQLite",
		"id", row.ID,
		"table", row.TableName,
		"title", row.Title,
		"cost", row.Cost)

	return strconv.FormatInt(row.ID, 10), nil
}

// Search implements store.ItemSearcher
func (r *SQLiteRepository) Search(ctx context.Context, table string, q store.Query) ([]store.StoredItem, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		rows []Item
		err  error
	)
	if q.IsAll() {
		rows, err = r.queries.ListItems(ctx, store.TableName(table))
	} else {
		rows, err = r.queries.ListItemsBy(ctx, store.TableName(table), q.Field(), q.Value())
	}
	if err != nil {
		return nil, fmt.Errorf("search items %s: %w", q, err)
	}

	items := make([]store.StoredItem, len(rows))
	for i, row := range rows {
		items[i] = row.stored()
	}
	return items, nil
}

// Delete implements store.ItemDeleter
func (r *SQLiteRepository) Delete(ctx context.Context, table string, q store.Query) (int, error) {
	if err := q.RequireField(); err != nil {
		return 0, err
	}

	n, err := r.queries.DeleteItemsBy(ctx, store.TableName(table), q.Field(), q.Value())
	if err != nil {
		return 0, fmt.Errorf("delete items %s: %w", q, err)
	}

	slog.DebugContext(ctx, "Items deleted from SQLite", "table", store.TableName(table), "query", q.String(), "removed", n)
	return int(n), nil
}

// Tables implements store.TableLister
func (r *SQLiteRepository) Tables(ctx context.Context) ([]string, error) {
	names, err := r.queries.ListTableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return store.WithDefault(names), nil
}

func (i Item) stored() store.StoredItem {
	return store.StoredItem{
		ID:    strconv.FormatInt(i.ID, 10),
		Table: i.TableName,
		Item: core.Item{
			Title:    i.Title,
			Cost:     core.Money{Cents: i.Cost},
			Priority: int(i.Priority),
			Interval: core.Interval(i.Interval),
		},
	}
}
