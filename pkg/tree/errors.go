package tree

import (
	"errors"
	"fmt"
)

// ErrNoEndpoint is reported when a node's kind has no retrieve/update endpoint.
var ErrNoEndpoint = errors.New("kind has no endpoint")

// DispatchError reports that a raw payload could not be wrapped into a node.
type DispatchError struct {
	Kind   SemanticKind
	ID     string
	Reason string
}

func (e *DispatchError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("dispatch %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("dispatch %s %s: %s", e.Kind, e.ID, e.Reason)
}

// InvariantViolation reports a write to a remote-controlled field.
type InvariantViolation struct {
	Field string
	ID    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("field %s of %s is remote-controlled and cannot be set", e.Field, e.ID)
}

// ValueError reports an Update value of the wrong type for its accessor.
type ValueError struct {
	Field string
	Value any
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %T for field %s", e.Value, e.Field)
}
