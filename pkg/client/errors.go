package client

import (
	"errors"
	"fmt"
)

// Kind classifies an APIError.
type Kind string

const (
	// KindNetwork means no response was received (dial, DNS, timeout, canceled).
	KindNetwork Kind = "network"
	// KindHTTP means a response arrived with a status outside [200,299].
	KindHTTP Kind = "http"
	// KindAuthExpired is an HTTP 401 observed by the auth guard; the session has been invalidated.
	KindAuthExpired Kind = "auth-expired"
	// KindDecode means a 2xx response body could not be decoded into the expected type.
	KindDecode Kind = "decode"
	// KindRequest means the request could not be built (bad body, bad query).
	KindRequest Kind = "request"
)

// User-facing messages.
const (
	DefaultErrorMessage   = "Something went wrong. Please try again."
	NetworkErrorMessage   = "Unable to reach the server. Check your connection and try again."
	SessionExpiredMessage = "Your session has expired. Please log in again."
	NoTokenMessage        = "No authentication token provided"
)

// APIError is the single error shape produced by every network call.
type APIError struct {
	Kind       Kind
	Message    string
	StatusCode int // 0 when no response was received
	RequestID  string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode == code
	}
	return false
}

// IsKind returns true if err (or any wrapped error) is an APIError of the given kind.
func IsKind(err error, kind Kind) bool {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Kind == kind
	}
	return false
}

// IsAuthExpired reports whether err means the session was invalidated by a 401.
func IsAuthExpired(err error) bool {
	return IsKind(err, KindAuthExpired)
}

// Message returns the text to show an operator for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}
