// Package jsonfile stores item tables in a single JSON document file.
//
// The file maps table names to arrays of item documents:
//
//	{
//	  "_default": [
//	    {"id": "…", "title": "Rent", "cost": 90000, "priority": 10, "interval": "monthly"}
//	  ]
//	}
//
// The file may be edited by hand; comments and trailing commas are accepted
// when reading. Every mutation rewrites the whole file atomically.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"budget/internal/core"
	"budget/internal/store"
)

var ErrCorruptFile = errors.New("corrupt items file")

type record struct {
	ID string `json:"id"`
	core.Document
}

// Store is a document file backed item store.
type Store struct {
	mu     sync.Mutex
	path   string
	tables map[string][]store.StoredItem
	newID  func() string
}

var _ store.Store = (*Store)(nil)

// Open reads path if it exists. The file and its directory are created on
// the first mutation.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		tables: map[string][]store.StoredItem{},
		newID:  uuid.NewString,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read items file: %w", err)
	}
	if err := s.decode(data); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCorruptFile, path, err)
	}
	return s, nil
}

func (s *Store) decode(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}

	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(standardized, &raw); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	seen := make(map[string]string, len(raw))
	for key, docs := range raw {
		table := store.TableName(key)
		if other, ok := seen[table]; ok {
			return fmt.Errorf("keys %q and %q both name table %q", other, key, table)
		}
		seen[table] = key
		for i, doc := range docs {
			it, err := decodeRecord(doc)
			if err != nil {
				return fmt.Errorf("table %q document %d: %w", table, i, err)
			}
			if it.ID == "" {
				it.ID = s.newID()
			}
			it.Table = table
			s.tables[table] = append(s.tables[table], it)
		}
	}
	return nil
}

func decodeRecord(doc json.RawMessage) (store.StoredItem, error) {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return store.StoredItem{}, &core.ValidationError{Field: "document", Err: errors.New("not a mapping")}
	}
	var rec record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return store.StoredItem{}, &core.ValidationError{Field: "document", Err: err}
	}
	it, err := rec.Document.Item()
	if err != nil {
		return store.StoredItem{}, err
	}
	return store.StoredItem{ID: rec.ID, Item: it}, nil
}

// flush writes every table to disk. Callers hold s.mu.
func (s *Store) flush() error {
	out := make(map[string][]record, len(s.tables))
	for table, items := range s.tables {
		if len(items) == 0 {
			continue
		}
		recs := make([]record, len(items))
		for i, it := range items {
			recs[i] = record{ID: it.ID, Document: core.DocumentOf(it.Item)}
		}
		out[table] = recs
	}

	buf, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	buf = append(buf, '\n')

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create items directory: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(buf)); err != nil {
		return fmt.Errorf("write items file: %w", err)
	}
	return nil
}

func (s *Store) Insert(_ context.Context, table string, it core.Item) (string, error) {
	if err := it.Validate(); err != nil {
		return "", err
	}
	table = store.TableName(table)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	prev := s.tables[table]
	s.tables[table] = append(prev[:len(prev):len(prev)], store.StoredItem{ID: id, Table: table, Item: it})
	if err := s.flush(); err != nil {
		s.tables[table] = prev
		return "", err
	}
	return id, nil
}

func (s *Store) Search(_ context.Context, table string, q store.Query) ([]store.StoredItem, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Filter(s.tables[store.TableName(table)], q), nil
}

func (s *Store) Delete(_ context.Context, table string, q store.Query) (int, error) {
	if err := q.RequireField(); err != nil {
		return 0, err
	}
	table = store.TableName(table)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.tables[table]
	kept := make([]store.StoredItem, 0, len(prev))
	for _, it := range prev {
		if !q.Match(it.Item) {
			kept = append(kept, it)
		}
	}
	removed := len(prev) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	s.tables[table] = kept
	if err := s.flush(); err != nil {
		s.tables[table] = prev
		return 0, err
	}
	return removed, nil
}

func (s *Store) Tables(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tables))
	for name, items := range s.tables {
		if len(items) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return store.WithDefault(names), nil
}

func (s *Store) Close() error {
	return nil
}
