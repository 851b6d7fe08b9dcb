package service

import (
	"context"
	"strings"

	"github.com/weiawesome/wes-io-live/support-service/internal/audit"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
)

// pipelineImpl implements Pipeline interface.
type pipelineImpl struct {
	repo     repository.ThreadRepository
	notifier Notifier
	metrics  *metrics.Metrics
}

// NewPipeline creates a new message pipeline.
func NewPipeline(repo repository.ThreadRepository, notifier Notifier, m *metrics.Metrics) Pipeline {
	return &pipelineImpl{repo: repo, notifier: notifier, metrics: m}
}

// Send stores text from sender in the thread and notifies both participants.
// The text is stored as given; blank text is rejected.
func (p *pipelineImpl) Send(ctx context.Context, threadID string, sender domain.UserSummary, text string) (*domain.MessageView, error) {
	if strings.TrimSpace(text) == "" || !validThreadID(threadID) {
		return nil, ErrInvalidInput
	}

	thread, err := p.repo.GetThread(ctx, threadID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if !thread.IsParticipant(sender) {
		return nil, ErrUnauthorized
	}

	msg, err := p.repo.CreateMessage(ctx, threadID, sender, text)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	p.metrics.MessageStored()

	thread.LastMessage = msg
	p.notifier.OnMessage(ctx, thread, msg)

	audit.LogThread(ctx, audit.ActionSendMessage, sender.ID, threadID, "message sent")

	view := domain.NewMessageView(msg)
	return &view, nil
}
