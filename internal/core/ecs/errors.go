package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrComponentNotFound is returned by Get/GetRef when the entity is dead
	// or does not carry the requested component. Programmer error on hot
	// paths; use TryGet where absence is expected.
	ErrComponentNotFound = errors.New("ecs: component not found")

	// ErrBulkCreateFailed is the sentinel wrapped by BulkCreateError.
	ErrBulkCreateFailed = errors.New("ecs: bulk create failed")
)

// BulkCreateError reports a failed batch creation. The batch is rolled back
// before this is returned: no entity from the call survives.
type BulkCreateError struct {
	Requested int
	Created   int // entities that had been created before the failure
	Cause     error
}

func (e *BulkCreateError) Error() string {
	return fmt.Sprintf("bulk create of %d entities failed after %d: %v", e.Requested, e.Created, e.Cause)
}

func (e *BulkCreateError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrBulkCreateFailed}
	}
	return []error{ErrBulkCreateFailed, e.Cause}
}
