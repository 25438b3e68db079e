package render

import "errors"

var (
	// ErrCacheKey is returned when a component's props cannot be turned into
	// a cache key.
	ErrCacheKey = errors.New("unable to derive cache key")

	// ErrCorrupted is returned when cached markup cannot be decoded.
	ErrCorrupted = errors.New("cached markup corrupted")

	// ErrNoContainer is returned by Mount for a missing container.
	ErrNoContainer = errors.New("container is required")

	// ErrChildCount is returned by Mount when the container does not hold
	// exactly one child node.
	ErrChildCount = errors.New("container must have one and only one child")

	// ErrNotElement is returned by Mount when the container's child is not
	// an element.
	ErrNotElement = errors.New("container child must be an element")

	// ErrMissingChecksum is returned by Mount when no checksum is given.
	ErrMissingChecksum = errors.New("checksum is required")

	// ErrUnknownMode is returned for an entry mode other than production or
	// development.
	ErrUnknownMode = errors.New("unknown render mode")
)
