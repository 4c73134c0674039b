package agent

import "sync"

// Routing state keys.
const (
	KeySavedToDatabase = "saved-to-database"
	KeyReceipt         = "receipt"
)

// State is the key/value routing state of one network run. The completion
// flag and the receipt id are only ever written together by markSaved.
type State struct {
	mu sync.RWMutex
	kv map[string]any
}

// NewState returns an empty routing state.
func NewState() *State {
	return &State{kv: make(map[string]any)}
}

// Get returns the value stored under key.
func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	return v, ok
}

// Saved reports whether the completion flag is set and returns the saved receipt id.
func (s *State) Saved() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.kv[KeySavedToDatabase]; !ok {
		return "", false
	}
	id, _ := s.kv[KeyReceipt].(string)
	return id, true
}

// Values returns a copy of the state.
func (s *State) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.kv))
	for k, v := range s.kv {
		out[k] = v
	}
	return out
}

func (s *State) markSaved(receiptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[KeySavedToDatabase] = true
	s.kv[KeyReceipt] = receiptID
}
