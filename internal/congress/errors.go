package congress

import (
	"errors"
	"fmt"
)

// ErrRateLimited distinguishes HTTP 429 responses so callers can back
// off instead of treating them as generic API failures.
var ErrRateLimited = errors.New("rate limited by upstream API")

// TransportError wraps network-level failures (DNS, connect, timeout,
// body read). The request never produced a usable HTTP response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError represents a non-2xx response from the upstream API.
type APIError struct {
	Op         string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed with status %d", e.Op, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrRateLimited) identify 429 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == 429 {
		return ErrRateLimited
	}
	return nil
}
