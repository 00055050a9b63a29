/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/Yamine-coder/gestion-rh-sub000/planner"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// BOARD TYPES
// =============================================================================

// LeaveDTO surfaces the leave situation of one cell.
type LeaveDTO struct {
	Status  string `json:"status"`
	Warning string `json:"warning,omitempty"`
}

// CellDTO is one (employee, day) cell of the planning grid. Shift is
// omitted when an approved leave hides the cell.
type CellDTO struct {
	EmployeeID string          `json:"employee_id"`
	Date       schedule.Date   `json:"date"`
	Shift      *schedule.Shift `json:"shift,omitempty"`
	Leave      *LeaveDTO       `json:"leave,omitempty"`
}

// BoardDTO is the grid response.
type BoardDTO struct {
	From  schedule.Date `json:"from"`
	To    schedule.Date `json:"to"`
	Cells []CellDTO     `json:"cells"`
}

// =============================================================================
// WRITE REQUESTS
// =============================================================================

// MoveSegmentRequest relocates one segment between cells.
type MoveSegmentRequest struct {
	From planner.SegmentRef `json:"from"`
	To   planner.CellRef    `json:"to"`
}

// AddSegmentRequest creates a segment in a cell.
type AddSegmentRequest struct {
	Cell    planner.CellRef  `json:"cell"`
	Segment schedule.Segment `json:"segment"`
}

// DeleteSegmentRequest removes one segment.
type DeleteSegmentRequest struct {
	Ref planner.SegmentRef `json:"ref"`
}

// SetAbsenceRequest records a full-day absence.
type SetAbsenceRequest struct {
	Cell   planner.CellRef `json:"cell"`
	Reason string          `json:"reason"`
}

// TreatAnomalyRequest carries a review decision plus the coordinates of
// the record being reviewed.
type TreatAnomalyRequest struct {
	Action     string          `json:"action"`
	Comment    string          `json:"comment,omitempty"`
	Arrival    *schedule.Clock `json:"arrival,omitempty"`
	Departure  *schedule.Clock `json:"departure,omitempty"`
	EmployeeID string          `json:"employee_id"`
	Date       schedule.Date   `json:"date"`
	Kind       string          `json:"kind"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
