package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldBatchID         = "batch_id"
	FieldFilename        = "filename"
	FieldImported        = "records_imported"
	FieldSkipped         = "records_skipped"
	FieldLedgerSize      = "ledger_size"
	FieldLedgerVer       = "ledger_version"
	FieldCategory        = "category"
	FieldTransactionCode = "transaction_code"
	FieldModel           = "model"
	FieldSheetsRef       = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAssistant = "assistant"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpImport   = "import"
	OpQuery    = "query"
	OpExport   = "export"
	OpChat     = "chat"
	OpAppend   = "append"
	OpSync     = "sync"
	OpParse    = "parse"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
