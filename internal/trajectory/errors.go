package trajectory

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTime marks a record without a numeric time field. Such
	// records are partial writes and are filtered without a warning.
	ErrMissingTime = errors.New("trajectory: record has no numeric time")

	// ErrMissingState indicates a record with neither "state" nor "states".
	ErrMissingState = errors.New("trajectory: record has no state object")

	// ErrNotObject indicates a fragment that is valid JSON but not an object.
	ErrNotObject = errors.New("trajectory: fragment is not a JSON object")
)

// ReadError wraps a failure of the log source. The Series is left untouched
// whenever an ingestion returns one.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("trajectory: read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SchemaError reports a record whose state object does not decode.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("trajectory: field %q: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
