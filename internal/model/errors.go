package model

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ValidationError is a client-caused failure; the message is safe to return to callers.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Invalid(msg string) error { return &ValidationError{Message: msg} }

func Invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the entity name, e.g. "project not found".
func NotFound(entity string) error { return fmt.Errorf("%s %w", entity, ErrNotFound) }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
