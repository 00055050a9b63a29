/*
Package backend abstracts the authoritative scheduling server.

PURPOSE:
  The planning engine is a client of a REST backend that owns Shift,
  Leave and Anomaly state. This package defines the collaborator surface
  the engine depends on, an HTTP implementation of it, and an in-memory
  fake used by tests and local development.

CONTRACT:
  - Shift writes are version-checked: UpdateShift succeeds only when the
    carried version matches the server's current one.
  - Create returns the server-assigned id with version 0.
  - Failures map onto the schedule error taxonomy: 404 -> ErrNotFound,
    409 -> ErrVersionConflict, anything else non-2xx or a transport
    failure -> ErrBackendUnavailable.

SEE ALSO:
  - client.go: HTTP implementation
  - memory.go: in-memory fake with failure injection
*/
package backend

import (
	"context"

	"github.com/Yamine-coder/gestion-rh-sub000/leave"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

// =============================================================================
// CLIENT - The full collaborator surface
// =============================================================================

// Client is everything the planning engine asks of the server.
type Client interface {
	ShiftService
	LeaveService
	AttendanceService
}

// ShiftService covers the server-owned Shift aggregate.
type ShiftService interface {
	// ListShifts returns shifts matching the query, the whole view when
	// the query is empty.
	ListShifts(ctx context.Context, q ShiftQuery) ([]schedule.Shift, error)

	// GetShift fetches one shift by id, primarily to refresh a version
	// before a write.
	GetShift(ctx context.Context, id string) (schedule.Shift, error)

	// CreateShift persists a new shift. The returned shift carries the
	// server-assigned id and version 0.
	CreateShift(ctx context.Context, s schedule.Shift) (schedule.Shift, error)

	// UpdateShift persists a version-checked update and returns the
	// server's updated record.
	UpdateShift(ctx context.Context, s schedule.Shift) (schedule.Shift, error)

	// DeleteShift removes a shift by id.
	DeleteShift(ctx context.Context, id string) error
}

// LeaveService exposes the leave subsystem, read-only here.
type LeaveService interface {
	ListLeaves(ctx context.Context) ([]leave.Leave, error)
}

// AttendanceService exposes planned-vs-actual comparison data and the
// anomaly treat workflow.
type AttendanceService interface {
	// Comparison returns per-day attendance captures and known anomalies
	// for one employee over [from, to].
	Comparison(ctx context.Context, employeeID string, from, to schedule.Date) ([]AttendanceDay, error)

	// TreatAnomaly applies a review action to a server-side anomaly.
	TreatAnomaly(ctx context.Context, id string, req TreatRequest) (AnomalyState, error)
}

// =============================================================================
// QUERY AND PAYLOAD TYPES
// =============================================================================

// ShiftQuery filters ListShifts. Nil bounds mean unbounded.
type ShiftQuery struct {
	EmployeeID string
	From       *schedule.Date
	To         *schedule.Date
}

// AttendanceDay is one day of captured clock records plus the anomalies
// the server already knows about.
type AttendanceDay struct {
	EmployeeID string            `json:"employee_id"`
	Date       schedule.Date     `json:"date"`
	Actuals    []variance.Actual `json:"actuals"`
	Anomalies  []AnomalyRef      `json:"anomalies"`
}

// AnomalyRef links a server-side anomaly to a segment ordinal.
type AnomalyRef struct {
	ID           string          `json:"id"`
	SegmentIndex int             `json:"segment_index"`
	Kind         variance.Kind   `json:"kind"`
	Status       variance.Status `json:"status"`
}

// TreatAction is a manager's review decision.
type TreatAction string

const (
	TreatValidate TreatAction = "validate"
	TreatRefuse   TreatAction = "refuse"
	TreatCorrect  TreatAction = "correct"
)

// StatusFor returns the anomaly status a treat action produces.
func (a TreatAction) StatusFor() variance.Status {
	switch a {
	case TreatValidate:
		return variance.StatusValidated
	case TreatRefuse:
		return variance.StatusRefused
	case TreatCorrect:
		return variance.StatusCorrected
	default:
		return variance.StatusPending
	}
}

// Valid reports whether the action is one of the three review verbs.
func (a TreatAction) Valid() bool {
	return a == TreatValidate || a == TreatRefuse || a == TreatCorrect
}

// TreatRequest is the payload of an anomaly treat call.
type TreatRequest struct {
	Action     TreatAction `json:"action"`
	Comment    string      `json:"comment,omitempty"`
	Correction *Correction `json:"correction,omitempty"`
}

// Correction carries corrected clock times for the correct action.
type Correction struct {
	Arrival   *schedule.Clock `json:"arrival,omitempty"`
	Departure *schedule.Clock `json:"departure,omitempty"`
}

// AnomalyState is the server's view of an anomaly after a treat call.
type AnomalyState struct {
	ID     string          `json:"id"`
	Status variance.Status `json:"status"`
}
