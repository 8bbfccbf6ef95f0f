package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrQuizNotFound indicates no quiz matches the requested id or PIN.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrUserNotFound indicates the user referenced by a token or email does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidID is returned for ids that are not well-formed before any store call.
	ErrInvalidID = errors.New("invalid quiz id format")
	// ErrInvalidPIN is returned for PINs that do not match the 6-character shape.
	ErrInvalidPIN = errors.New("invalid PIN format: must be 6 uppercase letters or digits")
	// ErrPINCollision is returned by stores when the generated PIN is already taken.
	ErrPINCollision = errors.New("quiz pin already in use")
	// ErrPINExhausted is returned once every PIN generation attempt collided.
	ErrPINExhausted = errors.New("could not allocate a unique quiz pin, try again later")
	// ErrEmailTaken is returned when signing up with an email that already exists.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUsernameTaken is returned when signing up with a username that already exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden is returned for authenticated callers lacking ownership or admin rights.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// orNil returns nil when no field failed so callers can return it directly.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(field, msg)
	return e
}
