package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable   = errors.New("node unavailable")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrObjectDeleted = errors.New("object deleted")
	ErrBadCursor     = errors.New("page has more results but no cursor")
)

// DeletedError reports an object that no longer exists in live storage.
type DeletedError struct {
	ID string
}

func (e *DeletedError) Error() string {
	return fmt.Sprintf("object %s: %s", e.ID, ErrObjectDeleted)
}

func (e *DeletedError) Is(target error) bool {
	return target == ErrObjectDeleted
}
