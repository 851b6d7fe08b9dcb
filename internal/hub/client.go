package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

var ErrClientClosed = errors.New("client closed")

// State is the lifecycle of a session: Connecting -> Joined -> Closed.
type State int32

const (
	StateConnecting State = iota
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoined:
		return "joined"
	default:
		return "closed"
	}
}

// Client is one authenticated connection.
type Client struct {
	ID   string
	User domain.UserSummary

	hub     *Hub
	conn    *websocket.Conn
	config  config.WebSocketConfig
	limiter *rate.Limiter
	ctx     context.Context
	cancel  context.CancelFunc
	state   atomic.Int32

	mu     sync.Mutex // guards send, closed, groups
	send   chan []byte
	closed bool
	groups []string
}

// NewClient creates a session in the Connecting state. conn may be nil when
// the client is driven without a socket.
func NewClient(ctx context.Context, id string, user domain.UserSummary, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = 256
	}

	ctx = log.WithFields(ctx, log.FieldClientID, id, log.FieldUserID, user.ID)
	ctx, cancel := context.WithCancel(ctx)

	c := &Client{
		ID:     id,
		User:   user,
		hub:    hub,
		conn:   conn,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, buffer),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// Context is cancelled when the session closes.
func (c *Client) Context() context.Context {
	return c.ctx
}

func (c *Client) State() State {
	return State(c.state.Load())
}

// Groups returns the groups the session has joined.
func (c *Client) Groups() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.groups...)
}

// Attach joins the personal group and, for operators, the operator pool.
// Every join is recorded so Close leaves exactly those groups, even if it
// runs while Attach is in progress.
func (c *Client) Attach() error {
	targets := []string{domain.PersonalGroup(c.User.ID)}
	if c.User.Kind.IsOperator() {
		targets = append(targets, domain.OperatorPoolGroup)
	}

	for _, group := range targets {
		if err := c.join(group); err != nil {
			return err
		}
	}

	if !c.state.CompareAndSwap(int32(StateConnecting), int32(StateJoined)) {
		return ErrClientClosed
	}
	return nil
}

func (c *Client) join(group string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	for _, g := range c.groups {
		if g == group {
			return nil
		}
	}
	c.hub.add(group, c)
	c.groups = append(c.groups, group)
	return nil
}

// forget drops group from the recorded memberships.
func (c *Client) forget(group string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, g := range c.groups {
		if g == group {
			c.groups = append(c.groups[:i], c.groups[i+1:]...)
			return
		}
	}
}

// deliver enqueues data without blocking. It reports false when the queue
// is full or the session is closed.
func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Send encodes a session-level frame and enqueues it.
func (c *Client) Send(frame interface{}) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if !c.deliver(data) {
		return ErrClientClosed
	}
	return nil
}

// Close leaves every joined group and ends the session. It is safe to call
// more than once and from any goroutine.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	groups := c.groups
	c.groups = nil
	close(c.send)
	c.mu.Unlock()

	c.state.Store(int32(StateClosed))
	c.cancel()

	for _, group := range groups {
		c.hub.remove(group, c)
	}
	c.hub.unregister(c)

	l := log.Ctx(c.ctx)
	l.Debug().Int("groups_left", len(groups)).Msg("client closed")
}

// ReadPump reads frames until the connection fails, passing each one to
// handler. Frames over the rate limit are answered with an error frame.
func (c *Client) ReadPump(handler func(ctx context.Context, c *Client, message []byte)) {
	defer func() {
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.Ctx(c.ctx)
				l.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		if c.limiter != nil && !c.limiter.Allow() {
			c.Send(domain.NewErrorFrame(domain.ErrCodeRateLimited, "too many frames"))
			continue
		}

		handler(c.ctx, c, message)
	}
}

// WritePump forwards queued payloads to the socket and keeps it alive with
// pings. A failed write closes the session.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				l := log.Ctx(c.ctx)
				l.Debug().Err(err).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
