package inapp

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inapp package.
var (
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("wrong type")
	ErrInvalidJSON  = errors.New("invalid params JSON")
	ErrTypeRequired = errors.New("in-app type is required")
)

// FieldError reports a single config key that could not be read.
type FieldError struct {
	Key      string
	Expected string
	Got      string
	Err      error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrMissingField) {
		return fmt.Sprintf("%s: %q (expected %s)", e.Err, e.Key, e.Expected)
	}
	return fmt.Sprintf("%s: %q is %s, expected %s", e.Err, e.Key, e.Got, e.Expected)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
