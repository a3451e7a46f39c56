package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"budget/internal/core"
)

const (
	FieldTitle    Field = "title"
	FieldCost     Field = "cost"
	FieldPriority Field = "priority"
	FieldInterval Field = "interval"
)

// Field names an item attribute that can be matched on.
type Field string

// Fields returns every searchable field.
func Fields() []Field {
	return []Field{FieldTitle, FieldCost, FieldPriority, FieldInterval}
}

func (f Field) valid() bool {
	switch f {
	case FieldTitle, FieldCost, FieldPriority, FieldInterval:
		return true
	}
	return false
}

var ErrInvalidQuery = errors.New("invalid query")

// InvalidQueryError reports a field/value pair that cannot form a predicate.
type InvalidQueryError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query (field=%q value=%q): %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// Query is an equality predicate over one item field. The zero Query matches
// every item.
type Query struct {
	field  Field
	text   string
	number int64
}

func All() Query {
	return Query{}
}

func ByTitle(title string) Query {
	return Query{field: FieldTitle, text: title}
}

func ByCost(cents int64) Query {
	return Query{field: FieldCost, number: cents}
}

func ByPriority(priority int) Query {
	return Query{field: FieldPriority, number: int64(priority)}
}

func ByInterval(iv core.Interval) Query {
	return Query{field: FieldInterval, text: string(iv)}
}

// ParseQuery builds a query from text. Field and value must be given together
// or not at all; both empty yields All().
func ParseQuery(field, value string) (Query, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if field == "" && value == "" {
		return All(), nil
	}
	if field == "" || value == "" {
		return Query{}, &InvalidQueryError{
			Field:  field,
			Value:  value,
			Reason: "both field and value must be supplied, or neither",
		}
	}

	switch f := Field(field); f {
	case FieldTitle:
		return ByTitle(value), nil
	case FieldInterval:
		return ByInterval(core.Interval(strings.ToLower(strings.TrimSpace(value)))), nil
	case FieldCost, FieldPriority:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return Query{}, &InvalidQueryError{Field: field, Value: value, Reason: "value must be an integer"}
		}
		return Query{field: f, number: n}, nil
	default:
		return Query{}, &InvalidQueryError{Field: field, Value: value, Reason: "unknown field"}
	}
}

// IsAll reports whether the query matches every item.
func (q Query) IsAll() bool {
	return q.field == ""
}

func (q Query) Field() Field {
	return q.field
}

// Value returns the comparison value as a string or int64, ready to be used
// as a SQL argument. It is nil for All().
func (q Query) Value() any {
	switch q.field {
	case FieldTitle, FieldInterval:
		return q.text
	case FieldCost, FieldPriority:
		return q.number
	}
	return nil
}

// Match reports whether it satisfies the predicate.
func (q Query) Match(it core.Item) bool {
	switch q.field {
	case "":
		return true
	case FieldTitle:
		return it.Title == q.text
	case FieldCost:
		return it.Cost.Cents == q.number
	case FieldPriority:
		return int64(it.Priority) == q.number
	case FieldInterval:
		return string(it.Interval) == q.text
	}
	return false
}

func (q Query) String() string {
	if q.IsAll() {
		return "*"
	}
	return fmt.Sprintf("%s=%v", q.field, q.Value())
}

// Validate rejects queries that reference an unknown field.
func (q Query) Validate() error {
	if q.IsAll() || q.field.valid() {
		return nil
	}
	return &InvalidQueryError{Field: string(q.field), Reason: "unknown field"}
}

// RequireField is used by operations that must not apply to a whole table.
func (q Query) RequireField() error {
	if q.IsAll() {
		return &InvalidQueryError{Reason: "a field and value are required"}
	}
	return q.Validate()
}
