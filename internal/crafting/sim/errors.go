package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalAction is returned when an action is applied to a state that
	// does not allow it.
	ErrIllegalAction = errors.New("illegal action")

	// ErrUnknownAction is returned when a skill name is not in the catalog.
	ErrUnknownAction = errors.New("unknown action")
)

// IllegalActionError describes an action applied where CanExecute is false.
type IllegalActionError struct {
	Action string
	// Step is the zero-based position in a replayed sequence, or -1 outside
	// of a replay.
	Step   int
	Reason string
}

func (e *IllegalActionError) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("step %d: cannot execute %q: %s", e.Step+1, e.Action, e.Reason)
	}
	return fmt.Sprintf("cannot execute %q: %s", e.Action, e.Reason)
}

func (e *IllegalActionError) Unwrap() error {
	return ErrIllegalAction
}

// UnknownActionError names a skill missing from the catalog.
type UnknownActionError struct {
	Name       string
	Suggestion string
}

func (e *UnknownActionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown skill %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown skill %q", e.Name)
}

func (e *UnknownActionError) Unwrap() error {
	return ErrUnknownAction
}
