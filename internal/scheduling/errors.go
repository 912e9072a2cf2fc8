package scheduling

import "errors"

var (
	// ErrNotFound reports an operation that referenced an appointment
	// identifier absent from the collection.
	ErrNotFound = errors.New("appointment not found")
	// ErrConflict reports a candidate interval that overlaps an existing
	// non-cancelled appointment for the same staff participant.
	ErrConflict = errors.New("appointment conflict")
)

// ValidationError reports input the engine rejected before touching its
// collection. Callers surface it as a retryable validation failure.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}
