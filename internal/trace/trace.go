// Package trace tags each interactive command with an id and records how
// long commands take.
package trace

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"budget/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// CommandIDKey is the context key for the command id
	CommandIDKey ContextKey = "command_id"
)

// Metrics tracks command metrics
type Metrics struct {
	TotalCommands  int64
	FailedCommands int64
	// LastDuration is in microseconds
	LastDuration int64
}

// Tracer wraps command execution with ids, timing and logging.
type Tracer struct {
	logger  *log.Logger
	metrics Metrics
	now     func() time.Time
}

func NewTracer(logger *log.Logger) *Tracer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Tracer{logger: logger, now: time.Now}
}

// Run executes fn under a fresh command id. The id and a logger carrying it
// are available from the context passed to fn.
func (t *Tracer) Run(ctx context.Context, command string, fn func(ctx context.Context) error) error {
	start := t.now()
	commandID := GenerateCommandID()

	ctx = context.WithValue(ctx, CommandIDKey, commandID)
	ctx = log.NewContext(ctx, t.logger.With("command_id", commandID))

	t.logger.DebugContext(ctx, "Command started",
		"command_id", commandID,
		log.FieldCommand, command)

	err := fn(ctx)

	duration := t.now().Sub(start)
	atomic.AddInt64(&t.metrics.TotalCommands, 1)
	atomic.StoreInt64(&t.metrics.LastDuration, duration.Microseconds())

	fields := []any{
		"command_id", commandID,
		log.FieldCommand, command,
		log.FieldDuration, duration.Milliseconds(),
		log.FieldSuccess, err == nil,
	}
	if err != nil {
		atomic.AddInt64(&t.metrics.FailedCommands, 1)
		t.logger.WarnContext(ctx, "Command completed", append(fields, log.FieldError, err)...)
	} else {
		t.logger.DebugContext(ctx, "Command completed", fields...)
	}

	return err
}

// GenerateCommandID creates a short unique id for tracing
func GenerateCommandID() string {
	return "cmd_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

// GetCommandID extracts the command id from context
func GetCommandID(ctx context.Context) string {
	if id, ok := ctx.Value(CommandIDKey).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (t *Tracer) GetMetrics() Metrics {
	return Metrics{
		TotalCommands:  atomic.LoadInt64(&t.metrics.TotalCommands),
		FailedCommands: atomic.LoadInt64(&t.metrics.FailedCommands),
		LastDuration:   atomic.LoadInt64(&t.metrics.LastDuration),
	}
}
