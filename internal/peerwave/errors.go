package peerwave

import (
	"errors"
	"fmt"
)

// ErrAuthRedirect is returned once navigation to the auth page has started.
var ErrAuthRedirect = errors.New("Redirecting to Peerwave auth")

// RequestError is a non-2xx answer without a Location header.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("Failed to get chat completion: %d %s", e.StatusCode, e.Body)
}

// UnexpectedResponseError is a 2xx answer whose body is not a chat reply.
type UnexpectedResponseError struct {
	Reason string
}

func (e *UnexpectedResponseError) Error() string {
	return "Unexpected chat completion response: " + e.Reason
}
