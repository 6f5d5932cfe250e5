// Package message defines the message record shown in a conversation list and
// the transfer format used to move records across process boundaries.
package message

import "fmt"

// Kind is the closed set of row variants a record can be displayed as.
// It is resolved once when a list ingests a record.
type Kind uint8

// Supported kinds. The numeric values are stable and used as row view types.
const (
	SentText Kind = iota
	ReceivedText
	SentImage
	ReceivedImage
)

var kindNames = [...]string{
	SentText:      "sent_text",
	ReceivedText:  "received_text",
	SentImage:     "sent_image",
	ReceivedImage: "received_image",
}

// KindOf resolves the row variant for a sender flag and image presence.
func KindOf(isSender, hasImage bool) Kind {
	switch {
	case isSender && hasImage:
		return SentImage
	case isSender:
		return SentText
	case hasImage:
		return ReceivedImage
	default:
		return ReceivedText
	}
}

// IsSent reports whether the kind is one of the sent variants.
func (k Kind) IsSent() bool {
	return k == SentText || k == SentImage
}

// IsImage reports whether the kind is one of the image variants.
func (k Kind) IsImage() bool {
	return k == SentImage || k == ReceivedImage
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("message: unknown kind %d", k)
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("message: unknown kind %q", text)
}
