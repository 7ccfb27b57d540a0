package history

import "errors"

var (
	// ErrUnavailable wraps every Fetch failure. A symbol being unavailable
	// is an expected outcome of a scan, never a scan failure.
	ErrUnavailable = errors.New("history unavailable")

	// ErrInsufficientHistory means the provider returned fewer bars than the
	// configured minimum. It is terminal: retrying will not add bars.
	ErrInsufficientHistory = errors.New("insufficient history")

	// ErrEmptyPayload means the provider returned no usable rows
	ErrEmptyPayload = errors.New("empty payload")

	// ErrMalformedPayload means the provider frame could not be normalized
	ErrMalformedPayload = errors.New("malformed payload")
)
