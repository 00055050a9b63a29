/*
handlers.go - HTTP API handlers for the scheduling engine

PURPOSE:
  Exposes the planning board, segment writes and attendance review via
  REST. Handles HTTP request/response, JSON serialization, and delegates
  to domain logic.

ENDPOINTS:
  Board:
    GET    /api/board?from=&to=&employee_id=   Planning grid with leave overlay

  Segments:
    POST   /api/segments                       Add a segment to a cell
    POST   /api/segments/move                  Relocate a segment between cells
    POST   /api/segments/delete                Remove a segment
    POST   /api/absences                       Record a full-day absence

  Attendance:
    GET    /api/employees/{id}/variances       Classified deviations
    GET    /api/employees/{id}/summary         Planned vs worked hours
    POST   /api/anomalies/{id}/treat           Review decision

  Sync:
    POST   /api/refresh                        Replace local state from server

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (overlap, leave, stale version)
  - 502: Authoritative server unreachable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Yamine-coder/gestion-rh-sub000/anomaly"
	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/planner"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner   *planner.Service
	Anomalies *anomaly.Service
}

// NewHandler creates a new handler over the two domain services.
func NewHandler(p *planner.Service, a *anomaly.Service) *Handler {
	return &Handler{Planner: p, Anomalies: a}
}

// =============================================================================
// BOARD
// =============================================================================

// GetBoard returns the planning grid for a date range, with the leave
// policy applied: cells under approved leave hide their shift, pending
// and refused leaves surface as warnings and indicators.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}
	employeeID := r.URL.Query().Get("employee_id")

	var shifts []*schedule.Shift
	if employeeID != "" {
		shifts = h.Planner.Board().ForEmployee(employeeID, from, to)
	} else {
		for _, s := range h.Planner.Board().All() {
			if s.Date.AfterOrEqual(from) && s.Date.BeforeOrEqual(to) {
				shifts = append(shifts, s)
			}
		}
	}

	board := BoardDTO{From: from, To: to, Cells: make([]CellDTO, 0, len(shifts))}
	for _, s := range shifts {
		cell := CellDTO{EmployeeID: s.EmployeeID, Date: s.Date, Shift: s}
		decision := h.Planner.Decide(s.EmployeeID, s.Date)
		if decision.Leave != nil {
			cell.Leave = &LeaveDTO{
				Status:  string(decision.Leave.Status),
				Warning: decision.Warning,
			}
		}
		if decision.HideShift {
			cell.Shift = nil
		}
		board.Cells = append(board.Cells, cell)
	}

	writeJSON(w, http.StatusOK, board)
}

// =============================================================================
// SEGMENT WRITES
// =============================================================================

func (h *Handler) MoveSegment(w http.ResponseWriter, r *http.Request) {
	var req MoveSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Planner.MoveSegment(r.Context(), planner.MoveRequest{From: req.From, To: req.To})
	if err != nil {
		writeDomainError(w, "Move rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) AddSegment(w http.ResponseWriter, r *http.Request) {
	var req AddSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.Planner.AddSegment(r.Context(), planner.AddRequest{Cell: req.Cell, Segment: req.Segment})
	if err != nil {
		writeDomainError(w, "Segment rejected", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	var req DeleteSegmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Planner.DeleteSegment(r.Context(), req.Ref); err != nil {
		writeDomainError(w, "Delete rejected", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetAbsence(w http.ResponseWriter, r *http.Request) {
	var req SetAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.Planner.SetAbsence(r.Context(), req.Cell, req.Reason)
	if err != nil {
		writeDomainError(w, "Absence rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, shift)
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (h *Handler) ListVariances(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	recs, err := h.Anomalies.Variances(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeDomainError(w, "Failed to list variances", err)
		return
	}
	if recs == nil {
		recs = []variance.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(w, r)
	if !ok {
		return
	}

	summary, err := h.Anomalies.Summary(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		writeDomainError(w, "Failed to build summary", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) TreatAnomaly(w http.ResponseWriter, r *http.Request) {
	var req TreatAnomalyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	treat := backend.TreatRequest{
		Action:  backend.TreatAction(req.Action),
		Comment: req.Comment,
	}
	if !treat.Action.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown action", nil)
		return
	}
	if req.Arrival != nil || req.Departure != nil {
		treat.Correction = &backend.Correction{Arrival: req.Arrival, Departure: req.Departure}
	}

	rec := variance.Record{
		AnomalyID:  chi.URLParam(r, "id"),
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		Kind:       variance.Kind(req.Kind),
	}

	state, err := h.Anomalies.Treat(r.Context(), rec, treat)
	if err != nil {
		writeDomainError(w, "Treat failed", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// =============================================================================
// SYNC
// =============================================================================

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.Refresh(r.Context()); err != nil {
		writeDomainError(w, "Refresh failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

// dateRange parses the from/to query parameters, defaulting to the
// current week when absent.
func dateRange(w http.ResponseWriter, r *http.Request) (schedule.Date, schedule.Date, bool) {
	from := schedule.Today()
	to := from.AddDays(6)

	if s := r.URL.Query().Get("from"); s != "" {
		parsed, err := schedule.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return from, to, false
		}
		from = parsed
		to = from.AddDays(6)
	}
	if s := r.URL.Query().Get("to"); s != "" {
		parsed, err := schedule.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return from, to, false
		}
		to = parsed
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to precedes from", nil)
		return from, to, false
	}
	return from, to, true
}

// writeDomainError maps domain sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidSegment):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, schedule.ErrNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, schedule.ErrOverlap),
		errors.Is(err, schedule.ErrLeaveConflict),
		errors.Is(err, schedule.ErrVersionConflict):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, schedule.ErrBackendUnavailable):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
