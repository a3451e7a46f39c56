package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"budget/internal/amqp"
)

func event(eventType, table, title string) *amqp.ItemEventMessage {
	return &amqp.ItemEventMessage{
		Type:      eventType,
		Table:     table,
		Title:     title,
		Cost:      1250,
		Priority:  4,
		Interval:  "weekly",
		Timestamp: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestEventWorker_HandleItemEvent(t *testing.T) {
	var out bytes.Buffer
	w := NewEventWorker(&out, "")
	ctx := context.Background()

	for _, msg := range []*amqp.ItemEventMessage{
		event(amqp.EventItemAdded, "_default", "Food"),
		event(amqp.EventItemAdded, "holiday", "Flights"),
		event(amqp.EventItemDeleted, "_default", "Food"),
	} {
		if err := w.HandleItemEvent(ctx, msg); err != nil {
			t.Fatalf("HandleItemEvent() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out.String())
	}
	want := "2024-03-01T09:30:00Z item.added [holiday] Flights cost=12.50 priority=4 interval=weekly"
	if lines[1] != want {
		t.Errorf("line = %q, want %q", lines[1], want)
	}

	if got := w.Stats(); got != (EventStats{Added: 2, Deleted: 1}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestEventWorker_TableFilter(t *testing.T) {
	var out bytes.Buffer
	w := NewEventWorker(&out, "holiday")
	handle := w.Handler(context.Background())

	if err := handle(event(amqp.EventItemAdded, "_default", "Food")); err != nil {
		t.Fatal(err)
	}
	if err := handle(event(amqp.EventItemAdded, "holiday", "Flights")); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out.String(), "Food") {
		t.Errorf("filtered event was printed: %q", out.String())
	}
	if got := w.Stats(); got != (EventStats{Added: 1, Skipped: 1}) {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestEventWorker_SkipsMalformedItems(t *testing.T) {
	var out bytes.Buffer
	w := NewEventWorker(&out, "")

	bad := event(amqp.EventItemAdded, "", "Gym")
	bad.Interval = "yearly"
	blank := event(amqp.EventItemDeleted, "", "  ")

	for _, msg := range []*amqp.ItemEventMessage{bad, blank} {
		if err := w.HandleItemEvent(context.Background(), msg); err != nil {
			t.Fatalf("HandleItemEvent() error = %v", err)
		}
	}

	if out.Len() != 0 {
		t.Errorf("malformed events were printed: %q", out.String())
	}
	if got := w.Stats(); got != (EventStats{Skipped: 2}) {
		t.Errorf("Stats() = %+v", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEventWorker_WriteFailureRequeues(t *testing.T) {
	w := NewEventWorker(failingWriter{}, "")

	err := w.HandleItemEvent(context.Background(), event(amqp.EventItemAdded, "", "Food"))

	if err == nil {
		t.Fatal("HandleItemEvent() should report write failures")
	}
	if got := w.Stats(); got != (EventStats{}) {
		t.Errorf("Stats() = %+v, want zero", got)
	}
}
