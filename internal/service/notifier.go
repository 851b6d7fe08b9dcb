package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/internal/kafka"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// notifierImpl implements Notifier interface.
type notifierImpl struct {
	groups GroupPublisher
	events kafka.EventProducer
}

// NewNotifier creates a notifier. events may be nil.
func NewNotifier(groups GroupPublisher, events kafka.EventProducer) Notifier {
	if events == nil {
		events = kafka.NoopProducer{}
	}
	return &notifierImpl{groups: groups, events: events}
}

// OnMessage pushes message_sent to the sender and, once the thread has an
// operator, message_received to the other participant.
func (n *notifierImpl) OnMessage(ctx context.Context, thread *domain.Thread, msg *domain.Message) {
	view := domain.NewMessageView(msg)
	n.push(ctx, domain.PersonalGroup(msg.Sender.ID), domain.PushMessageSent, view)

	if other := thread.Counterpart(msg.Sender.ID); other != nil {
		n.push(ctx, domain.PersonalGroup(other.ID), domain.PushMessageReceived, view)
	}

	n.emit(ctx, &domain.ChatEvent{
		Type:      domain.EventMessageSent,
		ThreadID:  thread.ID,
		ActorID:   msg.Sender.ID,
		MessageID: msg.ID,
	})
}

// OnThreadCreated pushes new_thread to the operator pool.
func (n *notifierImpl) OnThreadCreated(ctx context.Context, view domain.ThreadView) {
	n.push(ctx, domain.OperatorPoolGroup, domain.PushNewThread, view)
	n.emit(ctx, &domain.ChatEvent{
		Type:     domain.EventThreadCreated,
		ThreadID: view.ID,
		ActorID:  view.EndUser.ID,
	})
}

// OnThreadAssigned pushes admin_assigned to the thread owner.
func (n *notifierImpl) OnThreadAssigned(ctx context.Context, view domain.ThreadView) {
	n.push(ctx, domain.PersonalGroup(view.EndUser.ID), domain.PushAdminAssigned, view)

	event := &domain.ChatEvent{Type: domain.EventThreadAssigned, ThreadID: view.ID}
	if view.Admin != nil {
		event.ActorID = view.Admin.ID
	}
	n.emit(ctx, event)
}

// OnMessagesRead only feeds the event stream; read receipts are not pushed.
func (n *notifierImpl) OnMessagesRead(ctx context.Context, threadID, readerID string, count int64) {
	n.emit(ctx, &domain.ChatEvent{
		Type:     domain.EventMessagesRead,
		ThreadID: threadID,
		ActorID:  readerID,
		Count:    count,
	})
}

func (n *notifierImpl) push(ctx context.Context, group, kind string, data interface{}) {
	if err := n.groups.Publish(ctx, group, domain.Push{Type: kind, Data: data}); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldGroup, group).Str("kind", kind).Msg("push failed")
	}
}

func (n *notifierImpl) emit(ctx context.Context, event *domain.ChatEvent) {
	event.EventID = uuid.New().String()
	event.Timestamp = time.Now().UTC()
	if err := n.events.ProduceEvent(ctx, event); err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldThreadID, event.ThreadID).Str("event_type", event.Type).Msg("event not produced")
	}
}
