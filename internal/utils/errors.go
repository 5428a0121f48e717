package utils

import "fmt"

// MRCError represents a structured MRC error.
type MRCError struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *MRCError) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &MRCError{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *MRCError) Unwrap() error {
	return e.Cause
}
