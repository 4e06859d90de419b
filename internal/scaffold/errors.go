package scaffold

import "fmt"

// DiscoveryError reports an unreadable or malformed scaffold root or entry.
// It is fatal: no partial registry is returned alongside it.
type DiscoveryError struct {
	// Scaffold is the entry name, empty when the root itself failed.
	Scaffold string
	// Message is the human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	where := "scaffold root"
	if e.Scaffold != "" {
		where = fmt.Sprintf("scaffold '%s'", e.Scaffold)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *DiscoveryError) Unwrap() error {
	return e.Cause
}

func newDiscoveryError(name, message string, cause error) *DiscoveryError {
	return &DiscoveryError{Scaffold: name, Message: message, Cause: cause}
}

// FlagValidationError reports a programmatic flag value that is absent or
// fails its parse rule and has no declared default.
type FlagValidationError struct {
	// Flag is the declared flag name.
	Flag string
	// Reason describes what was wrong with the value.
	Reason string
	// Cause is the underlying parse error, if any.
	Cause error
}

// Error implements the error interface.
func (e *FlagValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("flag '%s': %s: %v", e.Flag, e.Reason, e.Cause)
	}
	return fmt.Sprintf("flag '%s': %s", e.Flag, e.Reason)
}

// Unwrap returns the underlying cause for error wrapping.
func (e *FlagValidationError) Unwrap() error {
	return e.Cause
}
