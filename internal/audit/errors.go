// Package audit orchestrates one audit generation: prompt assembly, the model
// call, sanitization, the phase simulator and report export.
package audit

import "fmt"

// ValidationError indicates the audit request was rejected before any model call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// MissingCredentialError indicates neither the session nor the deployment has an API key
type MissingCredentialError struct{}

func (e *MissingCredentialError) Error() string {
	return "no API key configured: add one in settings"
}

// GenerationError indicates the model call failed or produced nothing usable.
// Message is safe to show to users; Cause is logged only.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// BusyError indicates an operation of the same kind is already running for the session
type BusyError struct {
	Operation string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s already in progress", e.Operation)
}
