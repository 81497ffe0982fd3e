package formdraft

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("formdraft: validation failed")
	ErrTransport    = errors.New("formdraft: submission failed")
	ErrOutOfBounds  = errors.New("formdraft: index out of bounds")
	ErrUnknownField = errors.New("formdraft: unknown field")
)

// ValidationError reports a draft that cannot be submitted. Fields names the
// offending fields when they are known.
type ValidationError struct {
	Fields []string
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := ErrValidation.Error()
	if len(e.Fields) > 0 {
		msg += " fields=" + strings.Join(e.Fields, ",")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError reports a rejected or failed submission. StatusCode is zero
// when no response was received.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s endpoint=%s status=%d: %v", ErrTransport, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s endpoint=%s: %v", ErrTransport, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// OutOfBoundsError reports an index that does not address a question or
// option. The draft is left untouched.
type OutOfBoundsError struct {
	Op    string
	Kind  string
	Index int
	Len   int
}

func (e *OutOfBoundsError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s %s index=%d len=%d", ErrOutOfBounds, e.Op, e.Kind, e.Index, e.Len)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// FieldError reports a field name the binding does not accept.
type FieldError struct {
	Target string
	Name   string
}

func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s.%s", ErrUnknownField, e.Target, e.Name)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrUnknownField
}

func checkIndex(op, kind string, index, length int) error {
	if index < 0 || index >= length {
		return &OutOfBoundsError{Op: op, Kind: kind, Index: index, Len: length}
	}
	return nil
}
