package pipeline

import "errors"

// ErrNotFound is returned when an application or job does not exist.
var ErrNotFound = errors.New("application not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
