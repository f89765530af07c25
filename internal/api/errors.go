package api

import "fmt"

// AuthError means the backend rejected the credentials or the session, or the
// authentication endpoint was unreachable. The message is safe to surface.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError carries field-level problems with a submitted payload.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d field errors)", e.Message, len(e.Fields))
}

// ConflictError means the identity already exists (duplicate registration).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// SubmissionError is an immediate delivery failure for a field submission.
// StatusCode is zero when the request never reached the backend.
type SubmissionError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submission to %s failed: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("submission to %s failed: %v", e.Endpoint, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
