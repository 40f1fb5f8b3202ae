package service

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup that resolved to nothing. Handlers translate
// it to a 404.
var ErrNotFound = errors.New("not found")

// ValidationError is a user-facing input rejection. Handlers translate it
// to a 400 with the message as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
