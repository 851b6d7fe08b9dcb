package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches pkg/middleware/auth.go keys)
	FieldUserID   = "user_id"
	FieldUserKind = "user_kind"

	// Service
	FieldService  = "service"
	FieldInstance = "instance"

	// Conversation
	FieldThreadID  = "thread_id"
	FieldMessageID = "message_id"
	FieldGroup     = "group"
	FieldClientID  = "client_id"
	FieldAction    = "action"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
