/*
errors.go - Centralized error taxonomy for the planning engine

PURPOSE:
  All error types in one place. Every write entry point (manual edit,
  quick-create, drag-drop move) classifies failures against this taxonomy
  so callers can branch with errors.Is().

ERROR CATEGORIES:
  1. Pre-flight errors - Detected before any mutation or network call:
     invalid segment, overlap, leave conflict. Never leave local state
     changed.
  2. Persistence errors - Version conflict (409) and not found (404),
     recoverable locally via refetch-and-replace.
  3. Backend errors - Network failures and 5xx responses; always end in
     a snapshot rollback.

USAGE:
  if errors.Is(err, schedule.ErrLeaveConflict) {
      // surface the blocked-cell message, nothing was mutated
  }

SEE ALSO:
  - planner/service.go: Recovery and rollback paths
  - backend/client.go: Status code mapping into this taxonomy
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSegment is returned for malformed or zero-duration segments.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrOverlap is returned when a segment would share a wall-clock minute
	// with another segment of the same shift.
	ErrOverlap = errors.New("segments overlap")

	// ErrLeaveConflict is returned when a scheduling action targets a cell
	// covered by an approved leave.
	ErrLeaveConflict = errors.New("approved leave covers this day")

	// ErrVersionConflict is returned when a write carries a stale version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrNotFound is returned when the server no longer has the record.
	ErrNotFound = errors.New("not found")

	// ErrBackendUnavailable is returned for transport failures and 5xx
	// responses. Always triggers a full rollback.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidSegmentError reports why a segment failed validation.
type InvalidSegmentError struct {
	Range  TimeRange
	Reason string
}

func (e *InvalidSegmentError) Error() string {
	return fmt.Sprintf("invalid segment %s: %s", e.Range, e.Reason)
}

func (e *InvalidSegmentError) Unwrap() error { return ErrInvalidSegment }

// OverlapError reports the two ranges that collide.
type OverlapError struct {
	New      TimeRange
	Existing TimeRange
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("segment %s overlaps existing segment %s", e.New, e.Existing)
}

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// LeaveConflictError reports the blocked cell.
type LeaveConflictError struct {
	EmployeeID string
	Date       Date
	LeaveID    string
}

func (e *LeaveConflictError) Error() string {
	return fmt.Sprintf("approved leave %s blocks scheduling for %s on %s",
		e.LeaveID, e.EmployeeID, e.Date)
}

func (e *LeaveConflictError) Unwrap() error { return ErrLeaveConflict }

// VersionConflictError reports a stale optimistic write.
type VersionConflictError struct {
	ShiftID string
	Version int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("shift %s: stale version %d", e.ShiftID, e.Version)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// NotFoundError reports a record gone from the server.
type NotFoundError struct {
	Kind string // "shift", "anomaly"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// BackendError wraps a transport or server-side failure.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: backend failure (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: backend failure (status %d)", e.Op, e.StatusCode)
}

func (e *BackendError) Unwrap() error { return ErrBackendUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPreflight reports whether the error was detected before any mutation
// or network call. Local state is guaranteed untouched.
func IsPreflight(err error) bool {
	return errors.Is(err, ErrInvalidSegment) ||
		errors.Is(err, ErrOverlap) ||
		errors.Is(err, ErrLeaveConflict)
}

// IsRecoverable reports whether the failure can be resolved locally by a
// refetch-and-replace rather than a rollback.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrNotFound)
}
