package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budget/internal/core"
	"budget/internal/store"
)

// Item event types
const (
	EventItemAdded   = "item.added"
	EventItemDeleted = "item.deleted"
)

// ItemEventMessage announces a change to one stored item.
type ItemEventMessage struct {
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Cost      int64     `json:"cost"`
	Priority  int       `json:"priority"`
	Interval  string    `json:"interval"`
	Timestamp time.Time `json:"timestamp"`
}

func newItemEvent(eventType string, it store.StoredItem) *ItemEventMessage {
	return &ItemEventMessage{
		Type:      eventType,
		Table:     store.TableName(it.Table),
		ID:        it.ID,
		Title:     it.Title,
		Cost:      it.Cost.Cents,
		Priority:  it.Priority,
		Interval:  string(it.Interval),
		Timestamp: time.Now().UTC(),
	}
}

// NewItemAddedMessage builds the event published after an insert.
func NewItemAddedMessage(it store.StoredItem) *ItemEventMessage {
	return newItemEvent(EventItemAdded, it)
}

// NewItemDeletedMessage builds the event published after a delete.
func NewItemDeletedMessage(it store.StoredItem) *ItemEventMessage {
	return newItemEvent(EventItemDeleted, it)
}

// Item returns the event's item fields.
func (m *ItemEventMessage) Item() core.Item {
	return core.Item{
		Title:    m.Title,
		Cost:     core.Money{Cents: m.Cost},
		Priority: m.Priority,
		Interval: core.Interval(m.Interval),
	}
}

// String renders the event as one line for the events tail.
func (m *ItemEventMessage) String() string {
	return fmt.Sprintf("%s %s [%s] %s cost=%s priority=%d interval=%s",
		m.Timestamp.Format(time.RFC3339), m.Type, m.Table, m.Title,
		core.FormatMinor(m.Cost), m.Priority, m.Interval)
}

// ToJSON converts the message to JSON bytes
func (m *ItemEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ItemEventMessageFromJSON decodes and checks an event body.
func ItemEventMessageFromJSON(data []byte) (*ItemEventMessage, error) {
	var msg ItemEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventItemAdded, EventItemDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}
