package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"budget/internal/core"
	"budget/internal/store"
	"budget/internal/store/storetest"
)

func TestMemoryStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

func TestNewFromFileSeeds(t *testing.T) {
	dir := t.TempDir()

	// No file -> empty store
	s, err := NewFromFile(filepath.Join(dir, "missing.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ := s.Search(context.Background(), "", store.All())
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d items", len(all))
	}

	path := filepath.Join(dir, "seed_items.txt")
	content := "# title,cost,priority,interval\nRent, 90000, 10, monthly\n\nFood,6000,9,Weekly\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all, _ = s.Search(context.Background(), "", store.All())
	if len(all) != 2 || all[0].Title != "Rent" || all[1].Interval != core.Weekly {
		t.Fatalf("unexpected seeded items: %+v", all)
	}
}

func TestNewFromFileRejectsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed_items.txt")
	if err := os.WriteFile(path, []byte("Rent,lots,10,monthly\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected error for non-numeric cost")
	}
}

func TestNewFromFileReadFailures(t *testing.T) {
	dir := t.TempDir()
	long := filepath.Join(dir, "long.txt")
	line := "Rent," + strings.Repeat("9", 70*1024) + ",10,monthly\n"
	if err := os.WriteFile(long, []byte(line), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "directory", path: dir},
		{name: "line too long", path: long},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFromFile(tt.path)
			if err == nil {
				t.Fatalf("expected error, got store %+v", s)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Fatalf("error should name the seed path: %v", err)
			}
		})
	}
}

func TestInsertUsesIDGenerator(t *testing.T) {
	s := New()
	s.newID = func() string { return "fixed" }
	id, err := s.Insert(context.Background(), "", storetest.Item("a", 1, 1, core.Weekly))
	if err != nil || id != "fixed" {
		t.Fatalf("id=%q err=%v", id, err)
	}
}
