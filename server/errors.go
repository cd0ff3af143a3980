package server

import (
	"errors"
	"fmt"

	"github.com/tkrehbiel/activitynode/server/activity"
)

// ErrMalformedInput means a payload could not be decoded into a JSON value at all
var ErrMalformedInput = errors.New("malformed input")

// ValidationError means a decoded payload does not match the activity schema
type ValidationError struct {
	Issues activity.Issues
}

func (e *ValidationError) Error() string {
	return e.Issues.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Issues
}

// StorageError means the storage gateway failed a read or write
type StorageError struct {
	Op    string // put or get
	Table string
	Key   string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s [%s] in table [%s]: %s", e.Op, e.Key, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func newValidationError(err error) error {
	if issues, ok := activity.AsIssues(err); ok {
		return &ValidationError{Issues: issues}
	}
	return err
}
