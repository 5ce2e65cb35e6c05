package notify

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Notification struct {
	ID        uint64    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Feed holds the currently visible notifications. Each entry dismisses
// itself once its ttl elapses; the dismissal timer is never stopped. When
// more than size entries are visible the oldest is dropped early.
type Feed struct {
	clock      clockwork.Clock
	defaultTTL time.Duration
	size       int

	mu      sync.Mutex
	nextID  uint64
	entries []Notification
}

func NewFeed(clock clockwork.Clock, defaultTTL time.Duration, size int) *Feed {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if size <= 0 {
		size = 50
	}
	return &Feed{
		clock:      clock,
		defaultTTL: defaultTTL,
		size:       size,
	}
}

func (f *Feed) Notify(message string, kind Kind, ttl time.Duration) {
	if ttl <= 0 {
		ttl = f.defaultTTL
	}
	now := f.clock.Now()

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.entries = append(f.entries, Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if over := len(f.entries) - f.size; over > 0 {
		f.entries = append(f.entries[:0], f.entries[over:]...)
	}
	f.mu.Unlock()

	f.clock.AfterFunc(ttl, func() { f.dismiss(id) })
}

func (f *Feed) dismiss(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.entries {
		if n.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return
		}
	}
}

// Visible returns the live notifications, oldest first.
func (f *Feed) Visible() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Notification, len(f.entries))
	copy(out, f.entries)
	return out
}
