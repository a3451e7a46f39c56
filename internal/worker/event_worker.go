package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"budget/internal/amqp"
	"budget/internal/store"
)

// EventStats counts the events an EventWorker has handled.
type EventStats struct {
	Added   int
	Deleted int
	Skipped int
}

// EventWorker prints item events consumed from AMQP, one line each.
// When Table is set, events for other tables are counted as skipped, as are
// events whose item would not pass store validation.
type EventWorker struct {
	out   io.Writer
	table string

	mu    sync.Mutex
	stats EventStats
}

func NewEventWorker(out io.Writer, table string) *EventWorker {
	if table != "" {
		table = store.TableName(table)
	}
	return &EventWorker{out: out, table: table}
}

// HandleItemEvent processes a single item event message from AMQP
func (w *EventWorker) HandleItemEvent(ctx context.Context, msg *amqp.ItemEventMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.table != "" && store.TableName(msg.Table) != w.table {
		w.stats.Skipped++
		return nil
	}

	if err := msg.Item().Validate(); err != nil {
		w.stats.Skipped++
		slog.WarnContext(ctx, "Skipping malformed item event",
			"type", msg.Type,
			"id", msg.ID,
			"error", err)
		return nil
	}

	if _, err := fmt.Fprintln(w.out, msg.String()); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	switch msg.Type {
	case amqp.EventItemAdded:
		w.stats.Added++
	case amqp.EventItemDeleted:
		w.stats.Deleted++
	}

	slog.DebugContext(ctx, "Processed item event",
		"type", msg.Type,
		"table", msg.Table,
		"id", msg.ID)

	return nil
}

// Handler adapts the worker to amqp.Client.ConsumeItemEvents.
func (w *EventWorker) Handler(ctx context.Context) func(*amqp.ItemEventMessage) error {
	return func(msg *amqp.ItemEventMessage) error {
		return w.HandleItemEvent(ctx, msg)
	}
}

func (w *EventWorker) Stats() EventStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
