package buffer

import "errors"

// Buffer-specific error conditions. These are generic buffer errors; stream
// stages translate them into stream-level failures where appropriate.
var (
	// ErrFull is returned by Write under the Reject policy when the buffer
	// is at capacity.
	ErrFull = errors.New("buffer full")

	// ErrClosed is returned by Write after Close has been called.
	ErrClosed = errors.New("buffer closed")
)
