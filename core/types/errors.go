package types

import (
	"errors"
	"fmt"
)

// ErrDecode is the kind shared by every malformed-input failure.
var ErrDecode = errors.New("types: decode error")

// Field presence errors reported inside a DecodeError.
var (
	errMissingField = errors.New("missing required field")
	errTrailingData = errors.New("trailing data after value")
)

// DecodeError reports malformed or truncated input. It matches ErrDecode
// and the underlying cause with errors.Is.
type DecodeError struct {
	What string // entity being decoded, e.g. "batch" or "transaction"
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.What, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func decodeErr(what string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{What: what, Err: err}
}

func missing(field string) error {
	return fmt.Errorf("%w %q", errMissingField, field)
}
