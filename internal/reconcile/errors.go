package reconcile

import (
	"fmt"
	"strings"
)

// ValidationError rejects an edit before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid edit: %s", e.Reason)
	}
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// NotFoundError means the tracking ID matched no cell in the source.
type NotFoundError struct {
	TrackingID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tracking id %q not found", e.TrackingID)
}

// AmbiguousKeyError means the tracking ID matched more than one row.
type AmbiguousKeyError struct {
	TrackingID string
	Rows       []int
}

func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("tracking id %q found in %d rows %v", e.TrackingID, len(e.Rows), e.Rows)
}

// TransportError wraps a failed source call. Written lists the fields that
// had already landed in the source when the call failed.
type TransportError struct {
	Op      string
	Field   string
	Written []string
	Err     error
}

func (e *TransportError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Field != "" {
		sb.WriteString(" ")
		sb.WriteString(e.Field)
	}
	sb.WriteString(" failed")
	if len(e.Written) > 0 {
		sb.WriteString(fmt.Sprintf(" after writing %s", strings.Join(e.Written, ", ")))
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StaleTableError rejects an edit prepared against a table that has since
// been reloaded.
type StaleTableError struct {
	EditLoadID    string
	CurrentLoadID string
}

func (e *StaleTableError) Error() string {
	return fmt.Sprintf("edit was made against load %s but the table is now %s; reload and retry", e.EditLoadID, e.CurrentLoadID)
}
