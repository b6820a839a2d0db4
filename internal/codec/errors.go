package codec

import (
	"errors"
	"fmt"
)

// Decode failure kinds. A *DecodeError always unwraps to one of these.
var (
	ErrInvalidCode        = errors.New("invalid control code")
	ErrUnterminatedStream = errors.New("unterminated stream")
	ErrAllocation         = errors.New("sample buffer limit exceeded")
)

// DecodeError reports why and where a compressed stream could not be decoded
type DecodeError struct {
	Kind   error
	Offset int // byte offset into the input buffer
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v at byte %d", e.Kind, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func decodeErr(kind error, offset int) error {
	return &DecodeError{Kind: kind, Offset: offset}
}
