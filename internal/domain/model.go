package domain

import "time"

// ThreadModel is the GORM model for support_threads table.
type ThreadModel struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	EndUserID     string    `gorm:"type:varchar(64);index;not null"`
	EndUserEmail  string    `gorm:"type:varchar(255)"`
	EndUserKind   string    `gorm:"type:varchar(20)"`
	OperatorID    *string   `gorm:"type:varchar(64);index"`
	OperatorEmail string    `gorm:"type:varchar(255)"`
	OperatorKind  string    `gorm:"type:varchar(20)"`
	LastMessageID *string   `gorm:"type:varchar(26)"`
	IsActive      bool      `gorm:"not null;default:true"`
	Status        string    `gorm:"type:varchar(20);index;not null;default:'ACTIVE'"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"index;not null"`
}

// TableName specifies the table name for ThreadModel.
func (ThreadModel) TableName() string {
	return "support_threads"
}

// ToDomain converts ThreadModel to domain Thread. LastMessage is filled by
// the repository.
func (m *ThreadModel) ToDomain() *Thread {
	t := &Thread{
		ID: m.ID,
		EndUser: UserSummary{
			ID:    m.EndUserID,
			Email: m.EndUserEmail,
			Kind:  UserKind(m.EndUserKind),
		},
		IsActive:  m.IsActive,
		Status:    ThreadStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.OperatorID != nil {
		t.Operator = &UserSummary{
			ID:    *m.OperatorID,
			Email: m.OperatorEmail,
			Kind:  UserKind(m.OperatorKind),
		}
	}
	return t
}

// ThreadToModel converts domain Thread to ThreadModel.
func ThreadToModel(t *Thread) *ThreadModel {
	m := &ThreadModel{
		ID:           t.ID,
		EndUserID:    t.EndUser.ID,
		EndUserEmail: t.EndUser.Email,
		EndUserKind:  string(t.EndUser.Kind),
		IsActive:     t.IsActive,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.Operator != nil {
		id := t.Operator.ID
		m.OperatorID = &id
		m.OperatorEmail = t.Operator.Email
		m.OperatorKind = string(t.Operator.Kind)
	}
	if t.LastMessage != nil {
		id := t.LastMessage.ID
		m.LastMessageID = &id
	}
	return m
}

// MessageModel is the GORM model for support_messages table.
type MessageModel struct {
	ID          string    `gorm:"type:varchar(26);primaryKey"`
	ThreadID    string    `gorm:"type:varchar(36);index;not null"`
	SenderID    string    `gorm:"type:varchar(64);index;not null"`
	SenderEmail string    `gorm:"type:varchar(255)"`
	SenderKind  string    `gorm:"type:varchar(20)"`
	Text        string    `gorm:"type:text;not null"`
	IsRead      bool      `gorm:"index;not null;default:false"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "support_messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:       m.ID,
		ThreadID: m.ThreadID,
		Sender: UserSummary{
			ID:    m.SenderID,
			Email: m.SenderEmail,
			Kind:  UserKind(m.SenderKind),
		},
		Text:      m.Text,
		Read:      m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		ThreadID:    msg.ThreadID,
		SenderID:    msg.Sender.ID,
		SenderEmail: msg.Sender.Email,
		SenderKind:  string(msg.Sender.Kind),
		Text:        msg.Text,
		IsRead:      msg.Read,
		CreatedAt:   msg.CreatedAt,
	}
}

// Models lists every table owned by the service, for migrations.
func Models() []interface{} {
	return []interface{}{&ThreadModel{}, &MessageModel{}}
}
