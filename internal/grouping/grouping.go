// Package grouping decides which message headers are shown in a conversation.
//
// A timestamp header is shown when a message starts a new burst (more than
// Gap after the previous message), and a sender name is shown when a received
// message starts a new run of messages from the same sender.
package grouping

import (
	"strings"
	"time"
)

// DefaultGap is the burst threshold used when Engine.Gap is zero.
const DefaultGap = 10 * time.Minute

// Input is everything Evaluate needs to know about a record and its
// predecessor. PrevMillis and PrevName are ignored at position 0.
type Input struct {
	Position   int
	Millis     int64
	PrevMillis int64
	IsSender   bool
	Name       string
	PrevName   string
}

// Flags are the derived display flags for one record.
type Flags struct {
	TimeVisible bool
	NameVisible bool
}

// Engine evaluates grouping rules. The zero value uses DefaultGap.
type Engine struct {
	Gap time.Duration
}

func (e Engine) gapMillis() int64 {
	if e.Gap <= 0 {
		return DefaultGap.Milliseconds()
	}
	return e.Gap.Milliseconds()
}

// Evaluate computes the display flags for in. It has no side effects.
func (e Engine) Evaluate(in Input) Flags {
	return Flags{
		TimeVisible: e.TimeVisible(in.Position, in.Millis, in.PrevMillis),
		NameVisible: NameVisible(in.Position, in.IsSender, in.Name, in.PrevName),
	}
}

// TimeVisible reports whether a timestamp header is shown. Zero millis (an
// unparsable timestamp) is compared like any other value.
func (e Engine) TimeVisible(position int, millis, prevMillis int64) bool {
	if position == 0 {
		return true
	}
	return millis-prevMillis > e.gapMillis()
}

// NameVisible reports whether the sender name is shown. Names never show on
// sent messages or when empty; otherwise they show at the start of the list
// and whenever the sender differs from the previous one, ignoring case.
func NameVisible(position int, isSender bool, name, prevName string) bool {
	if isSender || name == "" {
		return false
	}
	if position == 0 {
		return true
	}
	return !strings.EqualFold(prevName, name)
}
