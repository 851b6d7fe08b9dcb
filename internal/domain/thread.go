package domain

import "time"

// ThreadStatus is the soft lifecycle state of a thread.
type ThreadStatus string

const (
	ThreadStatusActive   ThreadStatus = "ACTIVE"
	ThreadStatusInactive ThreadStatus = "INACTIVE"
	ThreadStatusRemoved  ThreadStatus = "REMOVED"
)

// Thread is a support conversation between one end user and at most one operator.
type Thread struct {
	ID          string
	EndUser     UserSummary
	Operator    *UserSummary
	LastMessage *Message
	IsActive    bool
	Status      ThreadStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasOperator reports whether the thread has been claimed.
func (t *Thread) HasOperator() bool {
	return t.Operator != nil
}

// IsAssignedTo reports whether userID is the assigned operator.
func (t *Thread) IsAssignedTo(userID string) bool {
	return t.Operator != nil && t.Operator.ID == userID
}

// CanView reports whether u may read the thread: the owner always, an
// operator while it is unassigned or assigned to them.
func (t *Thread) CanView(u UserSummary) bool {
	if t.EndUser.ID == u.ID {
		return true
	}
	if u.Kind.IsOperator() {
		return t.Operator == nil || t.Operator.ID == u.ID
	}
	return false
}

// IsParticipant reports whether u may post into the thread.
func (t *Thread) IsParticipant(u UserSummary) bool {
	return t.EndUser.ID == u.ID || t.IsAssignedTo(u.ID)
}

// Counterpart returns the other participant for senderID, or nil when the
// thread has no operator yet.
func (t *Thread) Counterpart(senderID string) *UserSummary {
	if t.Operator == nil {
		return nil
	}
	if senderID == t.EndUser.ID {
		op := *t.Operator
		return &op
	}
	eu := t.EndUser
	return &eu
}

// Message is one chat line inside a thread.
type Message struct {
	ID        string
	ThreadID  string
	Sender    UserSummary
	Text      string
	Read      bool
	CreatedAt time.Time
}
