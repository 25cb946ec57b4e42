package chat

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNoSession       = errors.New("no active session")
	ErrInvalidStatus   = errors.New("invalid status")
)

// Entity kinds reported by NotFoundError.
const (
	KindUser    = "user"
	KindMessage = "message"
	KindRoom    = "room"
)

// NotFoundError names the entity that could not be resolved.
// errors.Is matches it against the corresponding sentinel.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case KindUser:
		return fmt.Sprintf("no user registered as %q", e.ID)
	default:
		return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
	}
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case KindUser:
		return ErrUserNotFound
	case KindMessage:
		return ErrMessageNotFound
	case KindRoom:
		return ErrRoomNotFound
	}
	return nil
}
