package service

import "sync"

// ChangeFeed notifies subscribers when a user's receipts change. Notifications
// carry no payload; subscribers re-read the listing.
type ChangeFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

// NewChangeFeed creates an empty ChangeFeed.
func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers for changes to userID's receipts. The returned cancel
// func must be called to release the subscription.
func (f *ChangeFeed) Subscribe(userID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	set, ok := f.subs[userID]
	if !ok {
		set = make(map[chan struct{}]struct{})
		f.subs[userID] = set
	}
	set[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[userID], ch)
			if len(f.subs[userID]) == 0 {
				delete(f.subs, userID)
			}
		})
	}
}

// Publish wakes every subscriber of userID. Pending notifications coalesce.
func (f *ChangeFeed) Publish(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribers returns the number of active subscriptions for userID.
func (f *ChangeFeed) Subscribers(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}
