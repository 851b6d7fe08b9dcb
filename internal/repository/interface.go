//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_thread_repository.go -package=mocks
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
)

var (
	ErrThreadNotFound  = errors.New("thread not found")
	ErrAlreadyAssigned = errors.New("thread already assigned")
)

// ThreadRepository defines the interface for thread and message persistence.
type ThreadRepository interface {
	CreateThread(ctx context.Context, endUser domain.UserSummary) (*domain.Thread, error)
	GetThread(ctx context.Context, id string) (*domain.Thread, error)
	ListThreadsForEndUser(ctx context.Context, userID string) ([]domain.Thread, error)
	ListThreadsForOperator(ctx context.Context, operatorID string) ([]domain.Thread, error)
	// ClaimThread assigns operator only if the thread has none.
	ClaimThread(ctx context.Context, threadID string, operator domain.UserSummary) (*domain.Thread, error)

	CreateMessage(ctx context.Context, threadID string, sender domain.UserSummary, text string) (*domain.Message, error)
	ListMessages(ctx context.Context, threadID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, threadID, readerID string) (int64, error)
	CountUnread(ctx context.Context, threadID, viewerID string) (int, error)
	CountUnreadByThread(ctx context.Context, threadIDs []string, viewerID string) (map[string]int, error)

	// DeactivateIdle flags active threads not updated since cutoff and
	// returns their ids.
	DeactivateIdle(ctx context.Context, cutoff time.Time) ([]string, error)
}
