package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is returned when a turn is submitted with no text.
var ErrEmptyMessage = errors.New("message text is empty")

// ErrInvalidToolArguments marks a turn that failed because the model supplied
// arguments rejected by the tool's input schema.
var ErrInvalidToolArguments = errors.New("invalid tool arguments")

// DispatchError wraps a model capability failure. The user message appended
// at the start of the turn is retained so the user may resubmit.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("model dispatch failed: %v", e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
