package conversation

import "errors"

var (
	// ErrNotFound is returned by Manager for an unknown conversation ID.
	ErrNotFound = errors.New("conversation: not found")

	// ErrOutOfRange is returned by Manager when a position does not exist.
	ErrOutOfRange = errors.New("conversation: position out of range")

	// ErrExists is returned by Manager.Create for a duplicate ID.
	ErrExists = errors.New("conversation: already exists")
)
