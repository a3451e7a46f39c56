package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods for item operations
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogItemAdded logs successful item creation
func (sl *StructuredLogger) LogItemAdded(ctx context.Context, table, id, title string, costCents int64, priority int, interval string) {
	fields := NewFields().
		WithItem(title, costCents, priority, interval).
		WithTable(table).
		WithOperation(OpCreate).
		ToSlice()

	fields = append(fields, FieldItemID, id)

	sl.logger.InfoContext(ctx, "Item added", fields...)
}

// LogItemsDeleted logs a completed delete
func (sl *StructuredLogger) LogItemsDeleted(ctx context.Context, table, query string, removed int) {
	fields := NewFields().
		WithTable(table).
		WithOperation(OpDelete).
		ToSlice()

	fields = append(fields, FieldQuery, query, FieldRemoved, removed)

	sl.logger.InfoContext(ctx, "Items deleted", fields...)
}

// LogDeleteSkipped logs a delete refused because the title matched several items
func (sl *StructuredLogger) LogDeleteSkipped(ctx context.Context, table, title string, matches int) {
	fields := NewFields().
		WithTable(table).
		WithOperation(OpDelete).
		ToSlice()

	fields = append(fields, FieldItemTitle, title, "matches", matches)

	sl.logger.InfoContext(ctx, "Delete skipped, title is ambiguous", fields...)
}

// LogAllocation logs the outcome of an allocation
func (sl *StructuredLogger) LogAllocation(ctx context.Context, table string, payCents, remainingCents int64, funded, unfunded int) {
	fields := NewFields().
		WithAllocation(payCents, remainingCents, funded, unfunded).
		WithTable(table).
		WithOperation(OpAllocate)

	sl.logger.DebugContext(ctx, "Pay allocated", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
