package validate

import "fmt"

// ValidationError is a user-fixable configuration fault: a single
// human-readable message naming the offending field. It is reported
// instead of a command sequence; the caller may fix the configuration and
// try again.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errorf builds a ValidationError with a formatted message.
func Errorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
