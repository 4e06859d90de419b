package app

import "fmt"

// AppErrorType represents the pipeline stage an application error came from.
type AppErrorType int

const (
	// DiscoveryFailed indicates the scaffold registry could not be read.
	DiscoveryFailed AppErrorType = iota
	// ResolutionFailed indicates the project name or template could not be resolved.
	ResolutionFailed
	// ValidationFailed indicates programmatic flag values were rejected.
	ValidationFailed
	// TemplateFetchFailed indicates the template tree could not be made local.
	TemplateFetchFailed
	// RenderFailed indicates the project could not be written.
	RenderFailed
	// ActionFailed indicates a lifecycle command failed to start or complete.
	ActionFailed
)

// String returns the string representation of the error type.
func (t AppErrorType) String() string {
	switch t {
	case DiscoveryFailed:
		return "DiscoveryFailed"
	case ResolutionFailed:
		return "ResolutionFailed"
	case ValidationFailed:
		return "ValidationFailed"
	case TemplateFetchFailed:
		return "TemplateFetchFailed"
	case RenderFailed:
		return "RenderFailed"
	case ActionFailed:
		return "ActionFailed"
	default:
		return "Unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}
