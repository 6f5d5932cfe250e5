package conversation

import "github.com/flemzord/chatlist/pkg/message"

// ClickListener is called when a row is tapped.
type ClickListener func(position int, rec message.Record)

// LongClickListener is called when a row is long-pressed. It reports whether
// the event was consumed.
type LongClickListener func(position int, rec message.Record) bool

// SwipeListener receives swipe gestures. Swiping never removes a row by
// itself; the listener decides whether to call RemoveAt.
type SwipeListener interface {
	OnItemSwiped(position int)
	OnSettled(position int)
}

// Direction is the way a row may be swiped.
type Direction uint8

const (
	// SwipeStart moves the row towards the start edge.
	SwipeStart Direction = iota + 1
	// SwipeEnd moves the row towards the end edge.
	SwipeEnd
)

func (d Direction) String() string {
	switch d {
	case SwipeStart:
		return "start"
	case SwipeEnd:
		return "end"
	default:
		return "none"
	}
}

// SwipeDirection returns the direction a row of kind k may be swiped: sent
// rows sit on the end edge and move towards the start, received rows the
// other way.
func SwipeDirection(k message.Kind) Direction {
	if k.IsSent() {
		return SwipeStart
	}
	return SwipeEnd
}

// OnClick registers the click listener. Nil clears it.
func (l *List) OnClick(fn ClickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onClick = fn
}

// OnLongClick registers the long-click listener. Nil clears it.
func (l *List) OnLongClick(fn LongClickListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onLongClick = fn
}

// SetSwipeListener registers the swipe listener. Nil clears it.
func (l *List) SetSwipeListener(s SwipeListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.swipe = s
}

// Click dispatches a tap on position. Taps on rows that no longer exist are
// ignored. Listeners run outside the lock and may mutate the list.
func (l *List) Click(position int) bool {
	l.mu.Lock()
	fn := l.onClick
	rec, ok := l.at(position)
	l.mu.Unlock()

	if !ok || fn == nil {
		return false
	}
	fn(position, rec)
	return true
}

// LongClick dispatches a long press on position and reports whether the
// listener consumed it.
func (l *List) LongClick(position int) bool {
	l.mu.Lock()
	fn := l.onLongClick
	rec, ok := l.at(position)
	l.mu.Unlock()

	if !ok || fn == nil {
		return false
	}
	return fn(position, rec)
}

// ItemSwiped forwards a completed swipe on position to the swipe listener.
// Grouping state is untouched.
func (l *List) ItemSwiped(position int) {
	l.mu.Lock()
	s := l.swipe
	l.mu.Unlock()
	if s != nil {
		s.OnItemSwiped(position)
	}
}

// Settled forwards the end of a swipe animation on position.
func (l *List) Settled(position int) {
	l.mu.Lock()
	s := l.swipe
	l.mu.Unlock()
	if s != nil {
		s.OnSettled(position)
	}
}

func (l *List) at(i int) (message.Record, bool) {
	if i < 0 || i >= len(l.records) {
		return message.Record{}, false
	}
	return l.records[i], true
}
