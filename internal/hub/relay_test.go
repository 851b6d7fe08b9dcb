package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/pubsub"
)

// memoryBus fans every published event out to all subscribers, like a
// Redis channel shared by several instances.
type memoryBus struct {
	mu      sync.Mutex
	subs    []chan *pubsub.Event
	ready   chan struct{}
	failPub error
}

func newMemoryBus() *memoryBus {
	return &memoryBus{ready: make(chan struct{}, 8)}
}

func (b *memoryBus) Publish(ctx context.Context, channel string, event *pubsub.Event) error {
	if b.failPub != nil {
		return b.failPub
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- event
	}
	return nil
}

func (b *memoryBus) Subscribe(ctx context.Context, channel string) (<-chan *pubsub.Event, error) {
	ch := make(chan *pubsub.Event, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	b.ready <- struct{}{}
	return ch, nil
}

func (b *memoryBus) Unsubscribe(ctx context.Context, channel string) error { return nil }
func (b *memoryBus) Close() error                                          { return nil }

func TestRelay_CrossInstanceDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()

	bus := newMemoryBus()
	hubA, hubB := NewHub(nil), NewHub(nil)
	relayA := NewRelay(hubA, bus, "a")
	relayB := NewRelay(hubB, bus, "b")

	done := make(chan error, 2)
	go func() { done <- relayA.Run(ctx) }()
	go func() { done <- relayB.Run(ctx) }()
	<-bus.ready
	<-bus.ready

	onA := newTestClient(t, hubA, "ca", endUser, 8)
	onB := newTestClient(t, hubB, "cb", endUser, 8)
	require.NoError(t, onA.Attach())
	require.NoError(t, onB.Attach())

	group := domain.PersonalGroup(endUser.ID)
	require.NoError(t, relayA.Publish(ctx, group, domain.Push{Type: domain.PushMessageSent}))

	assert.Equal(t, domain.PushMessageSent, recv(t, onA)["type"])
	assert.Equal(t, domain.PushMessageSent, recv(t, onB)["type"])

	// The origin instance ignores its own echo.
	time.Sleep(20 * time.Millisecond)
	assertEmpty(t, onA)

	cancel()
	assert.NoError(t, <-done)
	assert.NoError(t, <-done)
}

func TestRelay_BusFailureStillDeliversLocally(t *testing.T) {
	bus := newMemoryBus()
	bus.failPub = errors.New("bus down")
	h := NewHub(nil)
	relay := NewRelay(h, bus, "a")

	c := newTestClient(t, h, "c", endUser, 8)
	require.NoError(t, c.Attach())

	err := relay.Publish(testContext(t), domain.PersonalGroup(endUser.ID), domain.Push{Type: domain.PushNewThread})
	assert.Error(t, err)
	assert.Equal(t, domain.PushNewThread, recv(t, c)["type"])
}
