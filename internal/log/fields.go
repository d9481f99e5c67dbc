package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldDay         = "day"
	FieldAmountCents = "amount_cents"
	FieldTxType      = "transaction_type"
	FieldTxID        = "transaction_id"
	FieldCategory    = "category"
	FieldCurrency    = "currency"
	FieldStrategy    = "history_strategy"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentStorage     = "storage"
	ComponentTransaction = "transaction"
	ComponentCategory    = "category"
	ComponentSettings    = "settings"
	ComponentReport      = "report"
	ComponentAMQP        = "amqp"
	ComponentWorker      = "worker"
	ComponentAuth        = "auth"
)
