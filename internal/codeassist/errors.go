package codeassist

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is matched by every *ValidationError.
	ErrMissingField = errors.New("codeassist: missing required field")

	// ErrNoPayloadFound means the provider text holds no {...} span.
	ErrNoPayloadFound = errors.New("codeassist: no JSON payload found in provider response")
	// ErrMalformedPayload means the {...} span did not parse.
	ErrMalformedPayload = errors.New("codeassist: malformed JSON payload in provider response")
)

// ValidationError names the request field that was missing or empty.
// Field uses the JSON name the client sent.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrMissingField }
