package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budget/internal/store"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Item is a row of the items table.
type Item struct {
	ID        int64
	TableName string
	Title     string
	Cost      int64
	Priority  int64
	Interval  string
}

const itemColumns = `id, table_name, title, cost, priority, interval`

const createItem = `INSERT INTO items (table_name, title, cost, priority, interval)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + itemColumns

type CreateItemParams struct {
	TableName string
	Title     string
	Cost      int64
	Priority  int64
	Interval  string
}

func (q *Queries) CreateItem(ctx context.Context, arg CreateItemParams) (Item, error) {
	row := q.db.QueryRowContext(ctx, createItem,
		arg.TableName,
		arg.Title,
		arg.Cost,
		arg.Priority,
		arg.Interval,
	)
	var i Item
	err := row.Scan(&i.ID, &i.TableName, &i.Title, &i.Cost, &i.Priority, &i.Interval)
	return i, err
}

const listItems = `SELECT ` + itemColumns + ` FROM items WHERE table_name = ? ORDER BY id`

// Column names are fixed per field; values are always bound as arguments.
var listItemsBy = map[store.Field]string{
	store.FieldTitle:    `SELECT ` + itemColumns + ` FROM items WHERE table_name = ? AND title = ? ORDER BY id`,
	store.FieldCost:     `SELECT ` + itemColumns + ` FROM items WHERE table_name = ? AND cost = ? ORDER BY id`,
	store.FieldPriority: `SELECT ` + itemColumns + ` FROM items WHERE table_name = ? AND priority = ? ORDER BY id`,
	store.FieldInterval: `SELECT ` + itemColumns + ` FROM items WHERE table_name = ? AND interval = ? ORDER BY id`,
}

var deleteItemsBy = map[store.Field]string{
	store.FieldTitle:    `DELETE FROM items WHERE table_name = ? AND title = ?`,
	store.FieldCost:     `DELETE FROM items WHERE table_name = ? AND cost = ?`,
	store.FieldPriority: `DELETE FROM items WHERE table_name = ? AND priority = ?`,
	store.FieldInterval: `DELETE FROM items WHERE table_name = ? AND interval = ?`,
}

func (q *Queries) ListItems(ctx context.Context, tableName string) ([]Item, error) {
	return q.listItems(ctx, listItems, tableName)
}

func (q *Queries) ListItemsBy(ctx context.Context, tableName string, field store.Field, value any) ([]Item, error) {
	query, ok := listItemsBy[field]
	if !ok {
		return nil, fmt.Errorf("no list query for field %q", field)
	}
	return q.listItems(ctx, query, tableName, value)
}

func (q *Queries) listItems(ctx context.Context, query string, args ...interface{}) ([]Item, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.TableName, &i.Title, &i.Cost, &i.Priority, &i.Interval); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queries) DeleteItemsBy(ctx context.Context, tableName string, field store.Field, value any) (int64, error) {
	query, ok := deleteItemsBy[field]
	if !ok {
		return 0, fmt.Errorf("no delete query for field %q", field)
	}
	result, err := q.db.ExecContext(ctx, query, tableName, value)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTableNames = `SELECT DISTINCT table_name FROM items ORDER BY table_name`

func (q *Queries) ListTableNames(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listTableNames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
