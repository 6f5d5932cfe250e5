package conversation

import (
	"sync"
)

// Event is a change on a named conversation, as delivered to subscribers.
type Event struct {
	Conversation string `json:"conversation"`
	Change
}

type subscriber struct {
	ch chan Event
}

// hub fans list changes out to subscribers without ever blocking the list.
// When a subscriber's buffer is full its pending events are discarded and
// replaced by a single OpReset, telling it to resync from a snapshot.
type hub struct {
	id     string
	buffer int
	onDrop func()

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

func newHub(id string, buffer int, onDrop func()) *hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &hub{
		id:     id,
		buffer: buffer,
		onDrop: onDrop,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Notify implements Observer.
func (h *hub) Notify(c Change) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ev := Event{Conversation: h.id, Change: c}
	for s := range h.subs {
		select {
		case s.ch <- ev:
			continue
		default:
		}
		// Only Notify sends, under h.mu, so the buffer has room once drained.
	drain:
		for {
			select {
			case <-s.ch:
			default:
				break drain
			}
		}
		s.ch <- Event{Conversation: h.id, Change: Change{Op: OpReset}}
		if h.onDrop != nil {
			h.onDrop()
		}
	}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := &subscriber{ch: make(chan Event, h.buffer)}
	if h.closed {
		close(s.ch)
		return s.ch, func() {}
	}
	h.subs[s] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
		})
	}
	return s.ch, cancel
}

// close ends every subscription.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}
