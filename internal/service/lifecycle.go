package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"

	"github.com/weiawesome/wes-io-live/support-service/internal/audit"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// lifecycleImpl implements Lifecycle interface.
type lifecycleImpl struct {
	repo     repository.ThreadRepository
	pipeline Pipeline
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewLifecycle creates a new thread lifecycle service.
func NewLifecycle(repo repository.ThreadRepository, pipeline Pipeline, notifier Notifier, m *metrics.Metrics) Lifecycle {
	return &lifecycleImpl{
		repo:     repo,
		pipeline: pipeline,
		notifier: notifier,
		metrics:  m,
	}
}

// CreateThread opens a thread for endUser, posts initialText as its first
// message when it is not blank, and announces it to the operator pool. The
// thread is announced even when the first message cannot be stored; that
// error is still returned.
func (s *lifecycleImpl) CreateThread(ctx context.Context, endUser domain.UserSummary, initialText string) (*domain.ThreadView, error) {
	if !endUser.Kind.IsEndUser() {
		return nil, ErrForbidden
	}

	thread, err := s.repo.CreateThread(ctx, endUser)
	if err != nil {
		return nil, err
	}
	ctx = log.WithFields(ctx, log.FieldThreadID, thread.ID)
	l := log.Ctx(ctx)

	var sendErr error
	if strings.TrimSpace(initialText) != "" {
		if _, sendErr = s.pipeline.Send(ctx, thread.ID, endUser, initialText); sendErr != nil {
			l.Warn().Err(sendErr).Msg("initial message not stored")
		} else if refreshed, err := s.repo.GetThread(ctx, thread.ID); err != nil {
			l.Warn().Err(err).Msg("failed to reload thread after initial message")
		} else {
			thread = refreshed
		}
	}

	// Every message so far is unread for any operator.
	s.notifier.OnThreadCreated(ctx, domain.NewThreadView(thread, s.unreadOrZero(ctx, thread.ID, "")))

	audit.LogThread(ctx, audit.ActionCreateThread, endUser.ID, thread.ID, "thread created")

	if sendErr != nil {
		return nil, sendErr
	}
	view := domain.NewThreadView(thread, 0)
	return &view, nil
}

// ClaimThread assigns operator to an unassigned thread. Exactly one of
// several concurrent claims succeeds; the others get ErrAlreadyAssigned.
func (s *lifecycleImpl) ClaimThread(ctx context.Context, threadID string, operator domain.UserSummary) (*domain.ThreadView, error) {
	if !operator.Kind.IsOperator() {
		return nil, ErrForbidden
	}
	if !validThreadID(threadID) {
		return nil, ErrInvalidInput
	}

	thread, err := s.repo.ClaimThread(ctx, threadID, operator)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyAssigned):
			s.metrics.Claim("conflict")
		case errors.Is(err, repository.ErrThreadNotFound):
		default:
			s.metrics.Claim("error")
		}
		return nil, mapRepoErr(err)
	}
	s.metrics.Claim("ok")
	ctx = log.WithFields(ctx, log.FieldThreadID, threadID)

	// The claim is committed; from here on a failed count only degrades the
	// unread figure.
	s.notifier.OnThreadAssigned(ctx, domain.NewThreadView(thread, s.unreadOrZero(ctx, threadID, thread.EndUser.ID)))

	audit.LogThread(ctx, audit.ActionClaimThread, operator.ID, threadID, "thread claimed")

	view := domain.NewThreadView(thread, s.unreadOrZero(ctx, threadID, operator.ID))
	return &view, nil
}

// unreadOrZero is CountUnread for paths that have already committed a
// change. A failed count is logged and reported as 0.
func (s *lifecycleImpl) unreadOrZero(ctx context.Context, threadID, viewerID string) int {
	n, err := s.repo.CountUnread(ctx, threadID, viewerID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("unread count unavailable")
		return 0
	}
	return n
}

// MarkRead marks every message not sent by reader as read and returns how
// many changed. Repeating it is harmless.
func (s *lifecycleImpl) MarkRead(ctx context.Context, threadID string, reader domain.UserSummary) (int64, error) {
	if _, err := s.visibleThread(ctx, threadID, reader); err != nil {
		return 0, err
	}

	n, err := s.repo.MarkRead(ctx, threadID, reader.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.notifier.OnMessagesRead(ctx, threadID, reader.ID, n)
		audit.LogThread(ctx, audit.ActionMarkRead, reader.ID, threadID, "messages marked read")
	}
	return n, nil
}

// UnreadCount counts messages in the thread that viewerID has not read.
func (s *lifecycleImpl) UnreadCount(ctx context.Context, threadID, viewerID string) (int, error) {
	if !validThreadID(threadID) {
		return 0, ErrInvalidInput
	}
	return s.repo.CountUnread(ctx, threadID, viewerID)
}

// ListThreads returns the threads visible to viewer, most recently updated
// first. Users that are neither end users nor operators see nothing.
func (s *lifecycleImpl) ListThreads(ctx context.Context, viewer domain.UserSummary) ([]domain.ThreadView, error) {
	var (
		threads []domain.Thread
		err     error
	)
	switch {
	case viewer.Kind.IsEndUser():
		threads, err = s.repo.ListThreadsForEndUser(ctx, viewer.ID)
	case viewer.Kind.IsOperator():
		threads, err = s.repo.ListThreadsForOperator(ctx, viewer.ID)
	default:
		return []domain.ThreadView{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := lo.Map(threads, func(t domain.Thread, _ int) string { return t.ID })
	counts, err := s.repo.CountUnreadByThread(ctx, ids, viewer.ID)
	if err != nil {
		return nil, err
	}

	return lo.Map(threads, func(t domain.Thread, _ int) domain.ThreadView {
		return domain.NewThreadView(&t, counts[t.ID])
	}), nil
}

// ListMessages returns the thread's messages in order and then marks them
// read for viewer. The returned views carry the read state from before the
// call.
func (s *lifecycleImpl) ListMessages(ctx context.Context, threadID string, viewer domain.UserSummary) ([]domain.MessageView, error) {
	if _, err := s.visibleThread(ctx, threadID, viewer); err != nil {
		return nil, err
	}

	msgs, err := s.repo.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.MarkRead(ctx, threadID, viewer.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.notifier.OnMessagesRead(ctx, threadID, viewer.ID, n)
	}

	return lo.Map(msgs, func(m domain.Message, _ int) domain.MessageView {
		return domain.NewMessageView(&m)
	}), nil
}

// GetThread returns one thread as seen by viewer.
func (s *lifecycleImpl) GetThread(ctx context.Context, threadID string, viewer domain.UserSummary) (*domain.ThreadView, error) {
	thread, err := s.visibleThread(ctx, threadID, viewer)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, threadID, viewer.ID)
	if err != nil {
		return nil, err
	}
	view := domain.NewThreadView(thread, unread)
	return &view, nil
}

func (s *lifecycleImpl) visibleThread(ctx context.Context, threadID string, viewer domain.UserSummary) (*domain.Thread, error) {
	if !validThreadID(threadID) {
		return nil, ErrInvalidInput
	}
	thread, err := s.repo.GetThread(ctx, threadID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !thread.CanView(viewer) {
		return nil, ErrForbidden
	}
	return thread, nil
}
