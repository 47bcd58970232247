package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuthorizationDenied = errors.New("sender is not an admin")
	ErrPreconditionUnmet   = errors.New("precondition unmet")
	ErrMalformedArgument   = errors.New("malformed argument")
	ErrPersistence         = errors.New("persist configuration")
	ErrTransportFatal      = errors.New("transport session failed")
)

// ResolutionError reports a single channel name that could not be resolved.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ForwardError reports a failed forward of a matched message.
type ForwardError struct {
	SourceID  int64
	MessageID int64
	Err       error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("forward message %d from %d: %v", e.MessageID, e.SourceID, e.Err)
}

func (e *ForwardError) Unwrap() error { return e.Err }
