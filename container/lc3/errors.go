package lc3

import "errors"

// Package-level errors for .lc3 file parsing and writing.
var (
	// ErrInvalidHeader indicates the file header is malformed.
	// This includes a wrong magic value, an undersized header length
	// field, or truncated header data.
	ErrInvalidHeader = errors.New("lc3: invalid file header")

	// ErrInvalidConfig indicates writer parameters that cannot be
	// represented in the header (sample rate or channels out of range,
	// unsupported frame duration).
	ErrInvalidConfig = errors.New("lc3: invalid stream parameters")

	// ErrFrameSize indicates a frame block length outside 1 to 65535
	// bytes.
	ErrFrameSize = errors.New("lc3: invalid frame size")

	// ErrUnexpectedEOS indicates the stream ended inside a frame block.
	ErrUnexpectedEOS = errors.New("lc3: unexpected end of stream")
)
