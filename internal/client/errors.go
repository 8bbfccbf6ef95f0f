package client

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "no response from server: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a response with a non-success status.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

// DecodeError is a success response whose body could not be read.
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response (%d): %v", e.Status, e.Err)
}
func (e *DecodeError) Unwrap() error { return e.Err }

// RequestError means the request was never sent: input was rejected
// locally or the request could not be built.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return "client error: " + e.Err.Error() }
func (e *RequestError) Unwrap() error { return e.Err }

// Describe turns any client error into a message fit for a player.
func Describe(err error) string {
	var (
		apiErr *APIError
		netErr *NetworkError
		decErr *DecodeError
		reqErr *RequestError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusNotFound:
			return "Not found: " + apiErr.Message
		case http.StatusUnauthorized:
			return "Please log in again: " + apiErr.Message
		case http.StatusForbidden:
			return "You are not allowed to do that."
		}
		return fmt.Sprintf("Server error (%d): %s", apiErr.Status, apiErr.Message)
	case errors.As(err, &decErr):
		return "The server sent a response this client could not read."
	case errors.As(err, &netErr):
		return "No response from server."
	case errors.As(err, &reqErr):
		return "Client error: " + reqErr.Err.Error()
	default:
		return err.Error()
	}
}
