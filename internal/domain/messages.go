package domain

import "time"

// Push kinds delivered to group members.
const (
	PushMessageSent     = "message_sent"
	PushMessageReceived = "message_received"
	PushNewThread       = "new_thread"
	PushAdminAssigned   = "admin_assigned"
)

// WebSocket frame types from client.
const (
	ActionReadMessages = "read_messages"
	ActionPing         = "ping"
)

// WebSocket frame types to client.
const (
	MsgTypeConnected = "connected"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Push is the envelope of every server push: {"type": kind, "data": ...}.
type Push struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MessageView is the serialized form of a message.
type MessageView struct {
	ID        string      `json:"id"`
	Thread    string      `json:"thread"`
	Sender    UserSummary `json:"sender"`
	Text      string      `json:"text"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewMessageView serializes m.
func NewMessageView(m *Message) MessageView {
	return MessageView{
		ID:        m.ID,
		Thread:    m.ThreadID,
		Sender:    m.Sender,
		Text:      m.Text,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// ThreadView is the serialized form of a thread, including the unread count
// for the viewer it was built for.
type ThreadView struct {
	ID          string       `json:"id"`
	EndUser     UserSummary  `json:"end_user"`
	Admin       *UserSummary `json:"admin"`
	LastMessage *MessageView `json:"last_message"`
	UnreadCount int          `json:"unread_count"`
	Status      ThreadStatus `json:"status"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewThreadView serializes t with the given unread count.
func NewThreadView(t *Thread, unread int) ThreadView {
	v := ThreadView{
		ID:          t.ID,
		EndUser:     t.EndUser,
		Admin:       t.Operator,
		UnreadCount: unread,
		Status:      t.Status,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.LastMessage != nil {
		mv := NewMessageView(t.LastMessage)
		v.LastMessage = &mv
	}
	return v
}

// Client -> Server frames

// BaseFrame is decoded first to dispatch on the action.
type BaseFrame struct {
	Action string `json:"action" validate:"required"`
}

type ReadMessagesFrame struct {
	Action   string `json:"action" validate:"required,eq=read_messages"`
	ThreadID string `json:"thread_id" validate:"required,uuid"`
}

// Server -> Client frames

type ConnectedFrame struct {
	Type     string   `json:"type"`
	ClientID string   `json:"client_id"`
	UserID   string   `json:"user_id"`
	Groups   []string `json:"groups"`
}

type PongFrame struct {
	Type string `json:"type"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewErrorFrame(code, message string) *ErrorFrame {
	return &ErrorFrame{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}

// Domain events written to the event stream.
const (
	EventThreadCreated  = "thread.created"
	EventThreadAssigned = "thread.assigned"
	EventMessageSent    = "message.sent"
	EventMessagesRead   = "messages.read"
	EventThreadIdled    = "thread.idled"
)

// ChatEvent is one record on the domain event stream, keyed by ThreadID.
type ChatEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	ThreadID  string    `json:"thread_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Count     int64     `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
