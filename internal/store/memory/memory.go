package memory

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/store"
)

// Store keeps item tables in memory. Nothing survives Close.
type Store struct {
	mu     sync.Mutex
	tables map[string][]store.StoredItem
	newID  func() string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		tables: map[string][]store.StoredItem{},
		newID:  uuid.NewString,
	}
}

// NewFromFile returns a store whose default table is seeded from path.
// Each non-blank, non-comment line is "title,cost,priority,interval".
// A missing file yields an empty store; any other read failure or a
// malformed line is an error.
func NewFromFile(path string) (*Store, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}

	s := New()
	for i, line := range lines {
		it, err := parseSeedLine(line)
		if err != nil {
			return nil, fmt.Errorf("seed %s line %d: %w", path, i+1, err)
		}
		if _, err := s.Insert(context.Background(), store.DefaultTable, it); err != nil {
			return nil, fmt.Errorf("seed %s line %d: %w", path, i+1, err)
		}
	}
	return s, nil
}

// Insert stores the item and returns a random document id.
func (s *Store) Insert(_ context.Context, table string, it core.Item) (string, error) {
	if err := it.Validate(); err != nil {
		return "", err
	}
	table = store.TableName(table)

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	s.tables[table] = append(s.tables[table], store.StoredItem{ID: id, Table: table, Item: it})
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
	kept := s.tables[table][:0]
	removed := 0
	for _, it := range s.tables[table] {
		if q.Match(it.Item) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.tables[table] = kept
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

func parseSeedLine(line string) (core.Item, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return core.Item{}, fmt.Errorf("expected title,cost,priority,interval, got %q", line)
	}
	cost, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return core.Item{}, &core.ValidationError{Field: "cost", Err: err}
	}
	priority, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return core.Item{}, &core.ValidationError{Field: "priority", Err: err}
	}
	iv, err := core.ParseInterval(parts[3])
	if err != nil {
		return core.Item{}, err
	}
	return core.Item{
		Title:    strings.TrimSpace(parts[0]),
		Cost:     core.Money{Cents: cost},
		Priority: priority,
		Interval: iv,
	}, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
