package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/weiawesome/wes-io-live/support-service/internal/metrics"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

// Hub is the in-process group registry. Groups exist only while they have
// members.
type Hub struct {
	clients map[string]*Client            // clientID -> client
	groups  map[string]map[string]*Client // group -> clientID -> client
	mu      sync.RWMutex
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		metrics: m,
	}
}

// Register tracks a live session so Close can shut it down.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	_, exists := h.clients[client.ID]
	h.clients[client.ID] = client
	h.mu.Unlock()

	if !exists {
		h.metrics.ConnectionOpened()
		l := log.L()
		l.Debug().Str(log.FieldClientID, client.ID).Msg("client registered")
	}
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, exists := h.clients[client.ID]
	delete(h.clients, client.ID)
	h.mu.Unlock()

	if exists {
		h.metrics.ConnectionClosed()
		l := log.L()
		l.Debug().Str(log.FieldClientID, client.ID).Msg("client unregistered")
	}
}

// Join adds client to group and records the membership on the client, so
// Close leaves it. Joining twice is a no-op and a closed client is not added.
// client must have been created for h.
func (h *Hub) Join(group string, client *Client) {
	_ = client.join(group)
}

// Leave removes client from group. Leaving a group one is not in is a no-op.
func (h *Hub) Leave(group string, client *Client) {
	h.remove(group, client)
	client.forget(group)
}

// add inserts client into group. Callers hold client.mu.
func (h *Hub) add(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]*Client)
		h.groups[group] = members
	}
	members[client.ID] = client
	l := log.L()
	l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldGroup, group).Msg("client joined group")
}

func (h *Hub) remove(group string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[group]
	if !ok {
		return
	}
	if _, in := members[client.ID]; !in {
		return
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(h.groups, group)
	}
	l := log.L()
	l.Debug().Str(log.FieldClientID, client.ID).Str(log.FieldGroup, group).Msg("client left group")
}

// Publish encodes payload once and delivers it to every member of group.
func (h *Hub) Publish(ctx context.Context, group string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", group, err)
	}
	h.PublishRaw(ctx, group, data)
	return nil
}

// PublishRaw delivers pre-encoded data to every member of group and returns
// how many accepted it. Delivery never blocks: a member whose queue is full
// or closed leaves the group and its session is closed.
func (h *Hub) PublishRaw(ctx context.Context, group string, data []byte) int {
	h.mu.RLock()
	members, ok := h.groups[group]
	if !ok || len(members) == 0 {
		h.mu.RUnlock()
		return 0
	}
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.deliver(data) {
			delivered++
			h.metrics.PushDelivered()
			continue
		}
		h.metrics.PushDropped()
		l := log.Ctx(ctx)
		l.Warn().Str(log.FieldClientID, c.ID).Str(log.FieldGroup, group).Msg("dropping slow or closed client")
		h.Leave(group, c)
		c.Close()
	}
	return delivered
}

// GroupSize returns the number of members in group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Groups returns the number of non-empty groups.
func (h *Hub) Groups() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups)
}

// ClientCount returns the number of registered sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes every registered session.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Close()
	}
	l := log.L()
	l.Info().Int("clients", len(clients)).Msg("hub closed")
}
