package result

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the results source is absent or unreadable.
	ErrNotFound = errors.New("result: results not found")

	// ErrDecode indicates the source is not a valid array of result records.
	ErrDecode = errors.New("result: failed to decode results")

	// ErrWrite indicates results could not be persisted.
	ErrWrite = errors.New("result: failed to write results")

	// ErrMissingField indicates a record lacks one of the five fields.
	ErrMissingField = errors.New("result: missing required field")

	// ErrNotNumeric indicates a field holds something other than a JSON number.
	ErrNotNumeric = errors.New("result: value is not numeric")
)

// DecodeError locates a per-record decode failure.
type DecodeError struct {
	Index int
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: record %d: %v", ErrDecode, e.Index, e.Err)
	}
	return fmt.Sprintf("%s: record %d: field %q: %v", ErrDecode, e.Index, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
