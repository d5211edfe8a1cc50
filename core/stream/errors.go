package stream

import "errors"

var (
	// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
	ErrStreamingUnsupported = errors.New("streaming unsupported by response writer")

	// ErrEmptyBody is returned when a publish request carries no payload.
	ErrEmptyBody = errors.New("empty request body")
)
