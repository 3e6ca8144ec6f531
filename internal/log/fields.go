package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldChatID     = "chat_id"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldCategory   = "category"
	FieldCategoryID = "category_id"
	FieldAmount     = "amount"
	FieldTxID       = "transaction_id"
	FieldToken      = "token"
	FieldAction     = "action"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentBot     = "bot"
	ComponentDialog  = "dialog"
	ComponentStorage = "storage"
	ComponentReport  = "report"
	ComponentNav     = "nav"
	ComponentAMQP    = "amqp"
	ComponentBackup  = "backup"
)

// Standard operation names.
const (
	OpCreate   = "create"
	OpParse    = "parse"
	OpReport   = "report"
	OpDecode   = "decode"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
