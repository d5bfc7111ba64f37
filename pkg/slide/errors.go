package slide

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned by Open when the slide path does not
	// exist. It is raised before any decoder call is attempted.
	ErrFileNotFound = errors.New("slide: file not found")

	// ErrUnrecognizedFormat is returned when the decoder cannot
	// identify the file as a slide at all.
	ErrUnrecognizedFormat = errors.New("slide: unrecognized format")

	// ErrVendorUnsupported is returned when the decoder recognizes the
	// vendor but cannot decode this particular variant.
	ErrVendorUnsupported = errors.New("slide: vendor not supported")

	// ErrClosed is returned for any call made after Close.
	ErrClosed = errors.New("slide: handle closed")
)

// DecoderError carries the text the native decoder recorded on its
// error side channel after a failed call. The decoder reports failure
// through sentinel return values (-1, -1.0, a blank buffer) and leaves
// the explanation in a separate "last error" slot; the checked wrapper
// re-queries that slot and surfaces it here.
type DecoderError struct {
	// Op is the decoder operation that failed, e.g. "read region"
	Op string

	// Message is the decoder's recorded error text. Empty means the
	// decoder violated its own contract: a sentinel value was returned
	// but no error was recorded.
	Message string
}

func (e *DecoderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("slide: %s returned a sentinel value but the decoder recorded no error (decoder contract violation)", e.Op)
	}
	return fmt.Sprintf("slide: %s failed: %s", e.Op, e.Message)
}

// decoderErr builds a DecoderError from the handle's current error slot.
func decoderErr(op string, src Source) *DecoderError {
	return &DecoderError{Op: op, Message: src.LastError()}
}
