package message

import (
	"errors"
	"fmt"
)

// Errors that occur during parsing.
var (
	// ErrNoBoundary is returned by Parse in strict mode when the boundary
	// parameter is not set on the Content-type field of a multipart part.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrLargeHeader is returned by Parse when the header is longer than the
	// configured WithMaxHeaderLength option (or the default,
	// DefaultMaxHeaderLength).
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

	// ErrLargePart is returned by Parse in strict mode when a part is longer
	// than the configured WithMaxPartLength option (or the default,
	// DefaultMaxPartLength).
	ErrLargePart = errors.New("a message part exceeds the maximum parse length")

	// ErrEmptyMessage is returned by Parse when the input contains no bytes.
	ErrEmptyMessage = errors.New("the message is empty")

	// ErrNoHeader is returned by Parse when no header field could be found at
	// the start of the message.
	ErrNoHeader = errors.New("the message has no header fields")
)

// MalformedMessageError is returned by Parse when the input cannot be split
// into a header and body at all. Use errors.Is to check for the cause.
type MalformedMessageError struct {
	Err error
}

// Error returns the error message.
func (err *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message: %v", err.Err)
}

// Unwrap returns the cause.
func (err *MalformedMessageError) Unwrap() error {
	return err.Err
}
