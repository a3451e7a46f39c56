package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/store"
)

// EventPublisher announces item changes. *amqp.Client satisfies it.
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, msg *amqp.ItemEventMessage) error
}

// DeleteOutcome reports what a delete-by-title did.
type DeleteOutcome int

const (
	Deleted DeleteOutcome = iota
	NotFound
	Ambiguous
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not found"
	case Ambiguous:
		return "ambiguous"
	}
	return fmt.Sprintf("DeleteOutcome(%d)", int(o))
}

// ItemService orchestrates item operations across the store and the event
// publisher. Events are best effort: a failed publish is logged and the
// operation still succeeds.
type ItemService struct {
	store  store.Store
	events EventPublisher
	logger *log.StructuredLogger
}

// NewItemService wires a store and an optional publisher. A nil logger
// discards output.
func NewItemService(s store.Store, events EventPublisher, logger *log.Logger) *ItemService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ItemService{
		store:  s,
		events: events,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentItems)),
	}
}

// Add stores it in table and returns the new id.
func (s *ItemService) Add(ctx context.Context, table string, it core.Item) (string, error) {
	id, err := s.store.Insert(ctx, table, it)
	if err != nil {
		return "", fmt.Errorf("add item: %w", err)
	}

	stored := store.StoredItem{ID: id, Table: store.TableName(table), Item: it}
	s.logger.LogItemAdded(ctx, stored.Table, id, it.Title, it.Cost.Cents, it.Priority, string(it.Interval))
	s.publish(ctx, amqp.NewItemAddedMessage(stored))

	return id, nil
}

// Search runs a field/value search given as text. Both empty lists the
// whole table; exactly one empty is an InvalidQueryError.
func (s *ItemService) Search(ctx context.Context, table, field, value string) ([]store.StoredItem, error) {
	q, err := store.ParseQuery(field, value)
	if err != nil {
		return nil, err
	}
	return s.store.Search(ctx, table, q)
}

// List returns every item of table, highest priority first. Ties keep
// insertion order.
func (s *ItemService) List(ctx context.Context, table string) ([]store.StoredItem, error) {
	items, err := s.store.Search(ctx, table, store.All())
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority > items[j].Priority
	})
	return items, nil
}

// Delete removes every item matching field/value and returns the count.
func (s *ItemService) Delete(ctx context.Context, table, field, value string) (int, error) {
	q, err := store.ParseQuery(field, value)
	if err != nil {
		return 0, err
	}
	if err := q.RequireField(); err != nil {
		return 0, err
	}
	return s.delete(ctx, table, q)
}

// DeleteByTitle deletes the single item called title. Nothing is removed
// when no item or more than one item carries that title.
func (s *ItemService) DeleteByTitle(ctx context.Context, table, title string) (DeleteOutcome, error) {
	q := store.ByTitle(title)
	matches, err := s.store.Search(ctx, table, q)
	if err != nil {
		return NotFound, fmt.Errorf("find %q: %w", title, err)
	}

	switch {
	case len(matches) == 0:
		return NotFound, nil
	case len(matches) > 1:
		s.logger.LogDeleteSkipped(ctx, store.TableName(table), title, len(matches))
		return Ambiguous, nil
	}

	if _, err := s.delete(ctx, table, q); err != nil {
		return NotFound, err
	}
	return Deleted, nil
}

func (s *ItemService) delete(ctx context.Context, table string, q store.Query) (int, error) {
	matches, err := s.store.Search(ctx, table, q)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}

	n, err := s.store.Delete(ctx, table, q)
	if err != nil {
		return 0, fmt.Errorf("delete items: %w", err)
	}

	s.logger.LogItemsDeleted(ctx, store.TableName(table), q.String(), n)
	for _, m := range matches {
		s.publish(ctx, amqp.NewItemDeletedMessage(m))
	}
	return n, nil
}

// Calculate allocates pay (minor units) across the items of table.
func (s *ItemService) Calculate(ctx context.Context, table string, pay int64) (core.Summary, error) {
	if pay < 0 {
		return core.Summary{}, &core.ValidationError{Field: "pay", Err: core.ErrInvalidAmount}
	}

	stored, err := s.store.Search(ctx, table, store.All())
	if err != nil {
		return core.Summary{}, fmt.Errorf("load items: %w", err)
	}

	result, err := core.Allocate(pay, store.Items(stored))
	if err != nil {
		s.logger.LogError(ctx, "Allocation failed", err, log.ComponentItems, log.OpAllocate,
			log.NewFields().WithTable(store.TableName(table)))
		return core.Summary{}, err
	}

	s.logger.LogAllocation(ctx, store.TableName(table), pay, result.RemainingPay, len(result.Funded), len(result.Unfunded))
	return core.Summarize(pay, result), nil
}

// Tables lists the known table names.
func (s *ItemService) Tables(ctx context.Context) ([]string, error) {
	return s.store.Tables(ctx)
}

func (s *ItemService) publish(ctx context.Context, msg *amqp.ItemEventMessage) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishItemEvent(ctx, msg); err != nil {
		s.logger.LogError(ctx, "Failed to publish item event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithTable(msg.Table).WithItem(msg.Title, msg.Cost, msg.Priority, msg.Interval))
	}
}

// Close closes the store and, when it holds connections, the publisher.
func (s *ItemService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if closer, ok := s.events.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close item service: %w", err)
	}
	return nil
}
