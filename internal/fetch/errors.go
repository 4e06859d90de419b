package fetch

import "fmt"

// FetchErrorType represents the type of fetch error.
type FetchErrorType int

const (
	// FetchFailed indicates the template could not be downloaded or extracted.
	FetchFailed FetchErrorType = iota
	// FetchNotFound indicates the template subdirectory does not exist at the branch.
	FetchNotFound
	// FetchAuthFailed indicates authentication failed (e.g., private repo).
	FetchAuthFailed
	// FetchInvalidRepo indicates the repository reference is malformed.
	FetchInvalidRepo
	// FetchInvalidTemplate indicates the template name cannot name a cache entry.
	FetchInvalidTemplate
)

// String returns the string representation of the error type.
func (t FetchErrorType) String() string {
	switch t {
	case FetchFailed:
		return "FetchFailed"
	case FetchNotFound:
		return "NotFound"
	case FetchAuthFailed:
		return "AuthFailed"
	case FetchInvalidRepo:
		return "InvalidRepo"
	case FetchInvalidTemplate:
		return "InvalidTemplate"
	default:
		return "Unknown"
	}
}

// FetchError represents a template fetch error.
type FetchError struct {
	// Type is the error type classification.
	Type FetchErrorType
	// Message is the human-readable error message.
	Message string
	// Source is the fetch method name (e.g., "archive", "git").
	Source string
	// Location is the repository location that caused the error.
	Location string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s fetch error [%s] for '%s': %s (caused by: %v)",
			e.Source, e.Type.String(), e.Location, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s fetch error [%s] for '%s': %s",
		e.Source, e.Type.String(), e.Location, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NewFetchError creates a new FetchError.
func NewFetchError(typ FetchErrorType, source, location, message string, cause error) *FetchError {
	return &FetchError{
		Type:     typ,
		Message:  message,
		Source:   source,
		Location: location,
		Cause:    cause,
	}
}

func newFailedError(source, location string, cause error) *FetchError {
	return NewFetchError(FetchFailed, source, location, "failed to fetch template", cause)
}

func newNotFoundError(source, location string) *FetchError {
	return NewFetchError(FetchNotFound, source, location, "template not found", nil)
}

func newAuthError(source, location string) *FetchError {
	return NewFetchError(FetchAuthFailed, source, location, "authentication failed (private repository?)", nil)
}
