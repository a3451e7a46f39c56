package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldBackend      = "backend"
	FieldTable        = "table"
	FieldItemID       = "item_id"
	FieldItemTitle    = "item_title"
	FieldCostCents    = "cost_cents"
	FieldPriority     = "priority"
	FieldInterval     = "interval"
	FieldQuery        = "query"
	FieldRemoved      = "removed"
	FieldPayCents     = "pay_cents"
	FieldRemaining    = "remaining_cents"
	FieldFundedCount  = "funded"
	FieldUnfundedCnt  = "unfunded"
	FieldCommand      = "command"
	FieldSuccess      = "success"
	FieldEventType    = "event_type"
	FieldDuration     = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentREPL    = "repl"
	ComponentItems   = "items"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpDelete    = "delete"
	OpList      = "list"
	OpAllocate  = "allocate"
	OpPublish   = "publish"
	OpValidate  = "validate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeQuery         = "query_error"
	ErrorTypeStructural    = "structural_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTable adds the item table name
func (f LogFields) WithTable(table string) LogFields {
	f[FieldTable] = table
	return f
}

// WithItem adds item-related fields
func (f LogFields) WithItem(title string, costCents int64, priority int, interval string) LogFields {
	f[FieldItemTitle] = title
	f[FieldCostCents] = costCents
	f[FieldPriority] = priority
	f[FieldInterval] = interval
	return f
}

// WithAllocation adds the figures of one allocation
func (f LogFields) WithAllocation(payCents, remainingCents int64, funded, unfunded int) LogFields {
	f[FieldPayCents] = payCents
	f[FieldRemaining] = remainingCents
	f[FieldFundedCount] = funded
	f[FieldUnfundedCnt] = unfunded
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
