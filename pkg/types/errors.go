package types

import "errors"

// Entity operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrUnknownEntity = errors.New("unknown entity")
)
