package conversation

import "fmt"

// Op identifies the structural change applied to a list.
type Op uint8

const (
	// OpReset means the whole list was replaced. Index and Count are zero.
	OpReset Op = iota
	// OpInsert means one row was inserted at Index.
	OpInsert
	// OpRemove means one row was removed at Index.
	OpRemove
	// OpRemoveRange means Count rows starting at Index were removed.
	OpRemoveRange
	// OpChange means the row at Index changed in place.
	OpChange
)

var opNames = [...]string{
	OpReset:       "reset",
	OpInsert:      "insert",
	OpRemove:      "remove",
	OpRemoveRange: "remove_range",
	OpChange:      "change",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	if int(o) >= len(opNames) {
		return nil, fmt.Errorf("conversation: unknown op %d", uint8(o))
	}
	return []byte(opNames[o]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Op) UnmarshalText(text []byte) error {
	for i, name := range opNames {
		if name == string(text) {
			*o = Op(i)
			return nil
		}
	}
	return fmt.Errorf("conversation: unknown op %q", text)
}

// Change describes one structural change to a list, precise enough for a
// presentation layer to re-render incrementally.
type Change struct {
	Op    Op  `json:"op"`
	Index int `json:"index"`
	Count int `json:"count"`
}

// Observer receives list changes. Notify is called synchronously while the
// list is locked, in mutation order; it must not call back into the list.
type Observer interface {
	Notify(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

// Notify implements Observer.
func (f ObserverFunc) Notify(c Change) { f(c) }

type nopObserver struct{}

func (nopObserver) Notify(Change) {}
