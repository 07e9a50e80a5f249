package intake

import (
	"fmt"
	"strings"
)

// ValidationError reports client-supplied data that failed shape checks.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports a reference to a record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// PersistenceError wraps a backing-store failure with enough context
// to retry the submission manually.
type PersistenceError struct {
	Op    string // "customer upsert" or "appointment insert"
	Phone string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed for phone %s: %v", e.Op, e.Phone, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
