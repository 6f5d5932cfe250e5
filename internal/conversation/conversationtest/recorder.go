// Package conversationtest provides test doubles for the conversation package.
package conversationtest

import (
	"sync"

	"github.com/flemzord/chatlist/internal/conversation"
)

// Recorder is an Observer that records every change it receives.
type Recorder struct {
	mu      sync.Mutex
	changes []conversation.Change
}

// Compile-time interface check.
var _ conversation.Observer = (*Recorder)(nil)

// Notify implements conversation.Observer.
func (r *Recorder) Notify(c conversation.Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

// Changes returns a copy of the recorded changes.
func (r *Recorder) Changes() []conversation.Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]conversation.Change, len(r.changes))
	copy(out, r.changes)
	return out
}

// Reset forgets all recorded changes.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = nil
}

// SwipeRecorder is a SwipeListener that records swiped and settled positions.
type SwipeRecorder struct {
	mu      sync.Mutex
	Swiped  []int
	Settled []int
}

// Compile-time interface check.
var _ conversation.SwipeListener = (*SwipeRecorder)(nil)

// OnItemSwiped implements conversation.SwipeListener.
func (s *SwipeRecorder) OnItemSwiped(position int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Swiped = append(s.Swiped, position)
}

// OnSettled implements conversation.SwipeListener.
func (s *SwipeRecorder) OnSettled(position int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Settled = append(s.Settled, position)
}
