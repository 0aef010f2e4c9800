package sync

import (
	"errors"
	"fmt"
)

// ErrRootNotFound is matched by every *NotFoundError.
var ErrRootNotFound = errors.New("root directory not found")

// NotFoundError reports a missing input or output root.
type NotFoundError struct {
	Role string
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s path does not exist: %s: %v", e.Role, e.Path, e.Err)
	}
	return fmt.Sprintf("%s path does not exist: %s", e.Role, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrRootNotFound
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IOError reports a failed filesystem operation on a specific path.
// Destination is empty for operations that touch a single path.
type IOError struct {
	Op          string
	Source      string
	Destination string
	Err         error
}

func (e *IOError) Error() string {
	switch {
	case e.Source != "" && e.Destination != "":
		return fmt.Sprintf("%s %s -> %s: %v", e.Op, e.Source, e.Destination, e.Err)
	case e.Destination != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Destination, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Source, e.Err)
	}
}

func (e *IOError) Unwrap() error {
	return e.Err
}
