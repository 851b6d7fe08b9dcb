package service

import (
	"context"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
)

// Lifecycle owns thread creation, claiming and read accounting.
type Lifecycle interface {
	CreateThread(ctx context.Context, endUser domain.UserSummary, initialText string) (*domain.ThreadView, error)
	ClaimThread(ctx context.Context, threadID string, operator domain.UserSummary) (*domain.ThreadView, error)
	MarkRead(ctx context.Context, threadID string, reader domain.UserSummary) (int64, error)
	UnreadCount(ctx context.Context, threadID, viewerID string) (int, error)
	ListThreads(ctx context.Context, viewer domain.UserSummary) ([]domain.ThreadView, error)
	ListMessages(ctx context.Context, threadID string, viewer domain.UserSummary) ([]domain.MessageView, error)
	GetThread(ctx context.Context, threadID string, viewer domain.UserSummary) (*domain.ThreadView, error)
}

// Pipeline persists messages and hands them to the Notifier.
type Pipeline interface {
	Send(ctx context.Context, threadID string, sender domain.UserSummary, text string) (*domain.MessageView, error)
}

// Notifier turns state changes into group pushes. Delivery is best effort:
// failures are logged, never returned.
type Notifier interface {
	OnMessage(ctx context.Context, thread *domain.Thread, msg *domain.Message)
	OnThreadCreated(ctx context.Context, view domain.ThreadView)
	OnThreadAssigned(ctx context.Context, view domain.ThreadView)
	OnMessagesRead(ctx context.Context, threadID, readerID string, count int64)
}

// GroupPublisher is satisfied by *hub.Hub and *hub.Relay.
type GroupPublisher interface {
	Publish(ctx context.Context, group string, payload interface{}) error
}
