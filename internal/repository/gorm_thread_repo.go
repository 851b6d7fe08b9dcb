package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// GormThreadRepository implements ThreadRepository using GORM.
type GormThreadRepository struct {
	db  *gorm.DB
	ids *messageIDs
}

// NewGormThreadRepository creates a new GORM-based thread repository.
func NewGormThreadRepository(db *gorm.DB) *GormThreadRepository {
	return &GormThreadRepository{db: db, ids: newMessageIDs()}
}

// CreateThread creates an unassigned, active thread owned by endUser.
func (r *GormThreadRepository) CreateThread(ctx context.Context, endUser domain.UserSummary) (*domain.Thread, error) {
	l := log.Ctx(ctx)

	now := time.Now().UTC()
	thread := &domain.Thread{
		ID:        uuid.New().String(),
		EndUser:   endUser,
		IsActive:  true,
		Status:    domain.ThreadStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).Create(domain.ThreadToModel(thread)).Error; err != nil {
		l.Error().Err(err).Str(log.FieldUserID, endUser.ID).Msg("failed to create thread in db")
		return nil, fmt.Errorf("create thread: %w", err)
	}

	l.Debug().Str(log.FieldThreadID, thread.ID).Msg("thread created in db")
	return thread, nil
}

// GetThread retrieves a non-removed thread with its last message.
func (r *GormThreadRepository) GetThread(ctx context.Context, id string) (*domain.Thread, error) {
	l := log.Ctx(ctx)

	var model domain.ThreadModel
	result := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, string(domain.ThreadStatusRemoved)).
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrThreadNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldThreadID, id).Msg("failed to get thread by id")
		return nil, fmt.Errorf("get thread: %w", result.Error)
	}

	threads, err := r.withLastMessages(ctx, []domain.ThreadModel{model})
	if err != nil {
		return nil, err
	}
	return &threads[0], nil
}

// ListThreadsForEndUser returns the threads opened by userID, most recently
// updated first.
func (r *GormThreadRepository) ListThreadsForEndUser(ctx context.Context, userID string) ([]domain.Thread, error) {
	query := r.db.WithContext(ctx).
		Where("end_user_id = ? AND status <> ?", userID, string(domain.ThreadStatusRemoved))
	return r.listThreads(ctx, query)
}

// ListThreadsForOperator returns unassigned threads and threads assigned to
// operatorID, most recently updated first.
func (r *GormThreadRepository) ListThreadsForOperator(ctx context.Context, operatorID string) ([]domain.Thread, error) {
	query := r.db.WithContext(ctx).
		Where("(operator_id IS NULL OR operator_id = ?) AND status <> ?", operatorID, string(domain.ThreadStatusRemoved))
	return r.listThreads(ctx, query)
}

func (r *GormThreadRepository) listThreads(ctx context.Context, query *gorm.DB) ([]domain.Thread, error) {
	l := log.Ctx(ctx)

	var models []domain.ThreadModel
	if err := query.Order("updated_at DESC").Order("id").Find(&models).Error; err != nil {
		l.Error().Err(err).Msg("failed to list threads from db")
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return r.withLastMessages(ctx, models)
}

// withLastMessages converts models and attaches their last messages with a
// single lookup.
func (r *GormThreadRepository) withLastMessages(ctx context.Context, models []domain.ThreadModel) ([]domain.Thread, error) {
	ids := lo.FilterMap(models, func(m domain.ThreadModel, _ int) (string, bool) {
		if m.LastMessageID == nil {
			return "", false
		}
		return *m.LastMessageID, true
	})

	byID := map[string]domain.MessageModel{}
	if len(ids) > 0 {
		var msgs []domain.MessageModel
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&msgs).Error; err != nil {
			l := log.Ctx(ctx)
			l.Error().Err(err).Msg("failed to load last messages")
			return nil, fmt.Errorf("load last messages: %w", err)
		}
		byID = lo.KeyBy(msgs, func(m domain.MessageModel) string { return m.ID })
	}

	return lo.Map(models, func(m domain.ThreadModel, _ int) domain.Thread {
		t := m.ToDomain()
		if m.LastMessageID != nil {
			if msg, ok := byID[*m.LastMessageID]; ok {
				t.LastMessage = msg.ToDomain()
			}
		}
		return *t
	}), nil
}

// ClaimThread sets the operator with a conditional update so that exactly one
// of several concurrent claims succeeds.
func (r *GormThreadRepository) ClaimThread(ctx context.Context, threadID string, operator domain.UserSummary) (*domain.Thread, error) {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.ThreadModel{}).
		Where("id = ? AND operator_id IS NULL AND status <> ?", threadID, string(domain.ThreadStatusRemoved)).
		Updates(map[string]interface{}{
			"operator_id":    operator.ID,
			"operator_email": operator.Email,
			"operator_kind":  string(operator.Kind),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldThreadID, threadID).Msg("failed to claim thread in db")
		return nil, fmt.Errorf("claim thread: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := r.GetThread(ctx, threadID); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyAssigned
	}

	l.Debug().Str(log.FieldThreadID, threadID).Str(log.FieldUserID, operator.ID).Msg("thread claimed in db")
	return r.GetThread(ctx, threadID)
}

// CreateMessage stores a message and moves the thread's last-message pointer
// in one transaction. The thread is re-activated.
func (r *GormThreadRepository) CreateMessage(ctx context.Context, threadID string, sender domain.UserSummary, text string) (*domain.Message, error) {
	l := log.Ctx(ctx)

	id, now := r.ids.next()
	msg := &domain.Message{
		ID:        id,
		ThreadID:  threadID,
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		touched := tx.Model(&domain.ThreadModel{}).
			Where("id = ? AND status <> ?", threadID, string(domain.ThreadStatusRemoved)).
			Updates(map[string]interface{}{
				"updated_at": now,
				"is_active":  true,
				"status":     string(domain.ThreadStatusActive),
			})
		if touched.Error != nil {
			return touched.Error
		}
		if touched.RowsAffected == 0 {
			return ErrThreadNotFound
		}

		if err := tx.Create(domain.MessageToModel(msg)).Error; err != nil {
			return err
		}

		// ULIDs sort by creation time, so the pointer never moves backwards
		// when two sends commit out of order.
		return tx.Model(&domain.ThreadModel{}).
			Where("id = ? AND (last_message_id IS NULL OR last_message_id < ?)", threadID, msg.ID).
			UpdateColumn("last_message_id", msg.ID).Error
	})
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return nil, err
		}
		l.Error().Err(err).Str(log.FieldThreadID, threadID).Msg("failed to create message in db")
		return nil, fmt.Errorf("create message: %w", err)
	}

	l.Debug().Str(log.FieldThreadID, threadID).Str(log.FieldMessageID, msg.ID).Msg("message created in db")
	return msg, nil
}

// ListMessages returns a thread's messages in creation order.
func (r *GormThreadRepository) ListMessages(ctx context.Context, threadID string) ([]domain.Message, error) {
	l := log.Ctx(ctx)

	var models []domain.MessageModel
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").Order("id ASC").
		Find(&models).Error; err != nil {
		l.Error().Err(err).Str(log.FieldThreadID, threadID).Msg("failed to list messages from db")
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return lo.Map(models, func(m domain.MessageModel, _ int) domain.Message {
		return *m.ToDomain()
	}), nil
}

// MarkRead flags every unread message in the thread not sent by readerID and
// returns how many changed.
func (r *GormThreadRepository) MarkRead(ctx context.Context, threadID, readerID string) (int64, error) {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldThreadID, threadID).Msg("failed to mark messages read")
		return 0, fmt.Errorf("mark read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountUnread counts unread messages in the thread not sent by viewerID.
func (r *GormThreadRepository) CountUnread(ctx context.Context, threadID, viewerID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("thread_id = ? AND sender_id <> ? AND is_read = ?", threadID, viewerID, false).
		Count(&count).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldThreadID, threadID).Msg("failed to count unread messages")
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return int(count), nil
}

// CountUnreadByThread is CountUnread for many threads in one grouped query.
// Threads without unread messages are absent from the result.
func (r *GormThreadRepository) CountUnreadByThread(ctx context.Context, threadIDs []string, viewerID string) (map[string]int, error) {
	counts := make(map[string]int, len(threadIDs))
	if len(threadIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ThreadID string
		Unread   int
	}
	if err := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Select("thread_id, COUNT(*) AS unread").
		Where("thread_id IN ? AND sender_id <> ? AND is_read = ?", threadIDs, viewerID, false).
		Group("thread_id").
		Scan(&rows).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to count unread messages by thread")
		return nil, fmt.Errorf("count unread by thread: %w", err)
	}

	for _, row := range rows {
		counts[row.ThreadID] = row.Unread
	}
	return counts, nil
}

// DeactivateIdle flags active threads whose last update is before cutoff.
// updated_at is left untouched so list ordering does not change.
func (r *GormThreadRepository) DeactivateIdle(ctx context.Context, cutoff time.Time) ([]string, error) {
	l := log.Ctx(ctx)

	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.ThreadModel{}).
			Where("is_active = ? AND status = ? AND updated_at < ?", true, string(domain.ThreadStatusActive), cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.ThreadModel{}).
			Where("id IN ? AND is_active = ?", ids, true).
			UpdateColumns(map[string]interface{}{
				"is_active": false,
				"status":    string(domain.ThreadStatusInactive),
			}).Error
	})
	if err != nil {
		l.Error().Err(err).Msg("failed to deactivate idle threads")
		return nil, fmt.Errorf("deactivate idle threads: %w", err)
	}
	return ids, nil
}
