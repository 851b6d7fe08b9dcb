package kafka

import (
	"context"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
)

// NoopProducer discards events. Used when the event stream is disabled.
type NoopProducer struct{}

func (NoopProducer) ProduceEvent(context.Context, *domain.ChatEvent) error { return nil }
func (NoopProducer) Close() error                                          { return nil }
