package audit

import (
	"context"

	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// Audit actions for support-service.
const (
	ActionConnect      = "support.connect"
	ActionAuthFailed   = "support.auth_failed"
	ActionDisconnect   = "support.disconnect"
	ActionCreateThread = "support.create_thread"
	ActionClaimThread  = "support.claim_thread"
	ActionSendMessage  = "support.send_message"
	ActionMarkRead     = "support.mark_read"
	ActionIdleSweep    = "support.idle_sweep"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogThread emits an audit entry about one thread.
func LogThread(ctx context.Context, action, userID, threadID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldThreadID, threadID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
