package repository

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// messageIDs hands out ULIDs that sort in creation order, together with
// the timestamp they encode.
type messageIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newMessageIDs() *messageIDs {
	return &messageIDs{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *messageIDs) next() (string, time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	return ulid.MustNew(ulid.Timestamp(now), g.entropy).String(), now
}
