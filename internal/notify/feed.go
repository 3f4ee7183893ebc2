package notify

import (
	"sync"

	"estatehub/internal/models"
)

// Feed is the in-process fan-out point for the live notification websocket.
// One user may hold several subscriptions (multiple tabs).
type Feed struct {
	mu   sync.Mutex
	subs map[int64]map[chan *models.Notification]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int64]map[chan *models.Notification]struct{})}
}

// Subscribe registers a buffered channel for one user and returns it with a
// cancel func. The channel is closed on cancel.
func (f *Feed) Subscribe(userID int64) (<-chan *models.Notification, func()) {
	ch := make(chan *models.Notification, 16)

	f.mu.Lock()
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[chan *models.Notification]struct{})
	}
	f.subs[userID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[userID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(f.subs, userID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Push delivers to every live subscription of the user without blocking; a
// slow consumer just misses the push and catches up from the list endpoint.
func (f *Feed) Push(userID int64, n *models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[userID] {
		select {
		case ch <- n:
		default:
		}
	}
}
