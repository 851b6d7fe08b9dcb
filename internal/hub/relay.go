package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
	"github.com/weiawesome/wes-io-live/support-service/pkg/pubsub"
)

// Relay extends a Hub across instances through the bus. Publish delivers to
// local members and forwards the payload; Run replays payloads published by
// other instances into the local hub.
type Relay struct {
	hub    *Hub
	bus    pubsub.PubSub
	origin string
}

func NewRelay(h *Hub, bus pubsub.PubSub, origin string) *Relay {
	return &Relay{hub: h, bus: bus, origin: origin}
}

// Publish has the same contract as Hub.Publish. A bus failure is returned
// after local delivery has happened.
func (r *Relay) Publish(ctx context.Context, group string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", group, err)
	}
	r.hub.PublishRaw(ctx, group, data)

	event, err := pubsub.NewEvent(pubsub.EventGroupPush, group, r.origin, json.RawMessage(data))
	if err != nil {
		return err
	}
	if err := r.bus.Publish(ctx, pubsub.ChannelGroups, event); err != nil {
		return fmt.Errorf("relay %s: %w", group, err)
	}
	return nil
}

// Run consumes the bus until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	events, err := r.bus.Subscribe(ctx, pubsub.ChannelGroups)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", pubsub.ChannelGroups, err)
	}

	l := log.Ctx(ctx)
	l.Info().Str("origin", r.origin).Msg("group relay started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("bus subscription closed")
			}
			if event.Type != pubsub.EventGroupPush || event.Origin == r.origin {
				continue
			}
			r.hub.PublishRaw(ctx, event.Group, event.Payload)
		}
	}
}
