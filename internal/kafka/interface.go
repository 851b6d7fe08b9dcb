package kafka

import (
	"context"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
)

// EventProducer writes domain events to the event stream.
type EventProducer interface {
	ProduceEvent(ctx context.Context, event *domain.ChatEvent) error
	Close() error
}
