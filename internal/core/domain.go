package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Weekly      Interval = "weekly"
	Fortnightly Interval = "fortnightly"
	Monthly     Interval = "monthly"
)

const (
	MinPriority = 0
	MaxPriority = 10

	// DefaultInterval is used when an item is added without an interval.
	DefaultInterval = Fortnightly

	maxTitleLength = 200
)

type (
	Interval string

	Money struct {
		Cents int64
	}

	// Item is a recurring expense. Cost is always held in minor units.
	Item struct {
		Title    string
		Cost     Money
		Priority int
		Interval Interval
	}
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrTitleTooLong    = fmt.Errorf("title too long (max %d characters)", maxTitleLength)
	ErrNegativeCost    = errors.New("cost cannot be negative")
	ErrPriorityRange   = fmt.Errorf("priority must be between %d and %d", MinPriority, MaxPriority)
	ErrUnknownInterval = errors.New("interval must be one of weekly, fortnightly, monthly")
	ErrMissingField    = errors.New("missing required field")
)

// ValidationError reports an item that is not a well-formed record.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid item %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StructuralError reports an item that cannot take part in an allocation.
type StructuralError struct {
	Index int
	Title string
	Field string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("item %d (%q) is malformed: bad or missing %s", e.Index, e.Title, e.Field)
}

// Intervals returns the supported intervals in display order.
func Intervals() []Interval {
	return []Interval{Weekly, Fortnightly, Monthly}
}

// ParseInterval accepts an interval name in any case, surrounded by spaces or not.
func ParseInterval(s string) (Interval, error) {
	iv := Interval(strings.ToLower(strings.TrimSpace(s)))
	if !iv.Valid() {
		return "", &ValidationError{Field: "interval", Err: ErrUnknownInterval}
	}
	return iv, nil
}

func (i Interval) Valid() bool {
	switch i {
	case Weekly, Fortnightly, Monthly:
		return true
	}
	return false
}

func (i Interval) String() string {
	return string(i)
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeCost
	}
	return nil
}

// Validate checks the item at the store boundary. Cost and priority ranges
// are enforced here; the allocator does not re-check them.
func (it Item) Validate() error {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if len(title) > maxTitleLength {
		return &ValidationError{Field: "title", Err: ErrTitleTooLong}
	}
	if err := it.Cost.Validate(); err != nil {
		return &ValidationError{Field: "cost", Err: err}
	}
	if it.Priority < MinPriority || it.Priority > MaxPriority {
		return &ValidationError{Field: "priority", Err: ErrPriorityRange}
	}
	if !it.Interval.Valid() {
		return &ValidationError{Field: "interval", Err: ErrUnknownInterval}
	}
	return nil
}

// Document is the loosely typed form of an item as it appears in a document
// file. Nil fields were absent from the source.
type Document struct {
	Title    *string `json:"title"`
	Cost     *int64  `json:"cost"`
	Priority *int    `json:"priority"`
	Interval *string `json:"interval"`
}

// Item converts the document into a validated Item.
func (d Document) Item() (Item, error) {
	switch {
	case d.Title == nil:
		return Item{}, &ValidationError{Field: "title", Err: ErrMissingField}
	case d.Cost == nil:
		return Item{}, &ValidationError{Field: "cost", Err: ErrMissingField}
	case d.Priority == nil:
		return Item{}, &ValidationError{Field: "priority", Err: ErrMissingField}
	case d.Interval == nil:
		return Item{}, &ValidationError{Field: "interval", Err: ErrMissingField}
	}

	it := Item{
		Title:    strings.TrimSpace(*d.Title),
		Cost:     Money{Cents: *d.Cost},
		Priority: *d.Priority,
		Interval: Interval(strings.ToLower(strings.TrimSpace(*d.Interval))),
	}
	if err := it.Validate(); err != nil {
		return Item{}, err
	}
	return it, nil
}

// DocumentOf is the inverse of Document.Item.
func DocumentOf(it Item) Document {
	title := it.Title
	cost := it.Cost.Cents
	priority := it.Priority
	interval := string(it.Interval)
	return Document{Title: &title, Cost: &cost, Priority: &priority, Interval: &interval}
}
