// Package bus provides the async update bus between feed surfaces and
// their consumers (renderers, the archive, notifiers).
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/boardpulse/boardpulse/internal/feed"
)

// Update is one published view snapshot for a surface.
type Update struct {
	Surface feed.Surface `json:"surface"`
	Items   []feed.Item  `json:"items"`
	At      time.Time    `json:"at"`
}

// UpdateBus decouples the feed controllers from whatever consumes their
// snapshots. Controllers publish; subscribers register per surface and are
// invoked from the dispatcher goroutine.
type UpdateBus struct {
	updates chan *Update
	subs    map[feed.Surface][]func(*Update)
	mu      sync.RWMutex
}

// NewUpdateBus creates a new update bus.
func NewUpdateBus() *UpdateBus {
	return &UpdateBus{
		updates: make(chan *Update, 100),
		subs:    make(map[feed.Surface][]func(*Update)),
	}
}

// Publish queues a snapshot for dispatch.
func (b *UpdateBus) Publish(u *Update) {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	b.updates <- u
}

// Subscribe registers a callback for one surface's updates.
func (b *UpdateBus) Subscribe(surface feed.Surface, callback func(*Update)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[surface] = append(b.subs[surface], callback)
}

// Dispatch runs the update dispatcher until the context is cancelled.
// This should be run as a goroutine.
func (b *UpdateBus) Dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u := <-b.updates:
			b.mu.RLock()
			callbacks := b.subs[u.Surface]
			b.mu.RUnlock()

			for _, cb := range callbacks {
				cb(u)
			}
		}
	}
}

// Pending returns the number of queued, undelivered updates.
func (b *UpdateBus) Pending() int {
	return len(b.updates)
}
