package itch

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrUnknownTag reports a tag byte with no catalog entry. The catalog is
	// exhaustive for ITCH 5.0; there is no generic passthrough for unknown types.
	ErrUnknownTag = errors.New("unknown message tag")

	// ErrUnknownCode reports an enumeration byte outside its table.
	ErrUnknownCode = errors.New("unknown enumeration code")

	// ErrInvalidText reports a fixed-width text field containing non-printable bytes.
	ErrInvalidText = errors.New("invalid text field")

	// ErrBadLength reports a frame whose declared length does not match the
	// fixed layout for its tag.
	ErrBadLength = errors.New("frame length does not match message layout")

	// ErrTruncated reports a byte source that ended in the middle of a frame.
	// A source that ends exactly on a frame boundary is a clean EOF, not an error.
	ErrTruncated = errors.New("unexpected end of stream")
)

// DecodeError wraps a decode failure with the offending tag and the stream
// offset of the frame's length prefix.
type DecodeError struct {
	Tag    byte  // message tag, 0 if the failure preceded tag dispatch
	Offset int64 // byte offset of the frame within the stream
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Tag != 0 {
		return fmt.Sprintf("itch: message %q at offset %d: %v", e.Tag, e.Offset, e.Err)
	}
	return fmt.Sprintf("itch: offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
