package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork means the request never completed: DNS, connection,
	// timeout or cancellation.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse means a 2xx reply whose body is not the JSON
	// the endpoint promises.
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	NetworkMessage   = "A network error occurred. Please try again."
	MalformedMessage = "The server returned an unreadable response."
)

// HTTPError is a non-2xx reply. Message is the body's "error" field when
// the body was JSON, empty otherwise.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// RejectedError is a 2xx reply whose body still reports failure, e.g. a
// login answered with success=false.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "request rejected: " + e.Message
}

// UserMessage turns err into the text shown in the message banner.
// fallback is used when the backend gave no message of its own.
func UserMessage(err error, fallback string) string {
	var httpErr *HTTPError
	var rejected *RejectedError

	switch {
	case errors.As(err, &httpErr):
		if httpErr.Message != "" {
			return httpErr.Message
		}
		return fallback
	case errors.As(err, &rejected):
		if rejected.Message != "" {
			return rejected.Message
		}
		return fallback
	case errors.Is(err, ErrMalformedResponse):
		return MalformedMessage
	case errors.Is(err, ErrNetwork),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return NetworkMessage
	default:
		return fallback
	}
}
