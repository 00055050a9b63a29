/*
Package anomaly reconciles planned schedules against captured attendance.

PURPOSE:
  Produces the reviewable variance list for a date range: fetches the
  captured clock records, classifies them against the local planning
  board, links the results to the anomalies the server already tracks,
  and overlays recent local review decisions so a just-treated anomaly
  does not flash back to its stale server status while the server
  catches up.

SEE ALSO:
  variance/classifier.go - the threshold rules
  reconcile/cache.go     - the review-decision overlay
*/
package anomaly

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/reconcile"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

// Service produces and reviews attendance variances.
type Service struct {
	backend    backend.Client
	board      *schedule.Board
	classifier *variance.Classifier
	cache      *reconcile.Cache
	log        zerolog.Logger
	today      func() schedule.Date
}

// Option adjusts service construction.
type Option func(*Service)

// WithToday overrides the date anchor used by the future-day guard.
func WithToday(fn func() schedule.Date) Option {
	return func(s *Service) { s.today = fn }
}

func New(client backend.Client, board *schedule.Board, classifier *variance.Classifier, cache *reconcile.Cache, log zerolog.Logger, opts ...Option) *Service {
	svc := &Service{
		backend:    client,
		board:      board,
		classifier: classifier,
		cache:      cache,
		log:        log.With().Str("component", "anomaly").Logger(),
		today:      schedule.Today,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// =============================================================================
// VARIANCE LISTING
// =============================================================================

// Variances classifies one employee's captured attendance over a date
// range against the planning board, adopting server anomaly ids where
// they match and overlaying recent local review decisions.
func (s *Service) Variances(ctx context.Context, employeeID string, from, to schedule.Date) ([]variance.Record, error) {
	days, err := s.backend.Comparison(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}

	today := s.today()
	var records []variance.Record
	for _, day := range days {
		in := variance.DayInput{
			EmployeeID: day.EmployeeID,
			Date:       day.Date,
			Today:      today,
			Actuals:    day.Actuals,
		}
		if shift := s.board.Get(schedule.NewCellKey(day.EmployeeID, day.Date)); shift != nil {
			if shift.Kind == schedule.ShiftAbsence {
				in.PlannedAbsence = true
			} else {
				in.Planned = shift.Segments
			}
		}

		dayRecords := s.classifier.ClassifyDay(in)
		linkServerAnomalies(dayRecords, day.Anomalies)
		records = append(records, dayRecords...)
	}

	return s.cache.Reconcile(ctx, records), nil
}

// linkServerAnomalies attaches the server's anomaly id and status to the
// classified record covering the same segment and kind. Records the
// server does not know about yet keep an empty id; id-less records may
// still adopt a cached id downstream.
func linkServerAnomalies(records []variance.Record, refs []backend.AnomalyRef) {
	for i := range records {
		for _, ref := range refs {
			if ref.Kind == records[i].Kind && ref.SegmentIndex == records[i].SegmentIndex {
				records[i].AnomalyID = ref.ID
				records[i].Status = ref.Status
				break
			}
		}
	}
}

// =============================================================================
// REVIEW
// =============================================================================

// Treat applies a review decision to a server anomaly and records the
// decided status locally so list calls reflect it immediately. The
// record carries the (employee, day, kind) coordinates so the cached
// decision can be matched back even if the server re-issues the id.
func (s *Service) Treat(ctx context.Context, rec variance.Record, req backend.TreatRequest) (backend.AnomalyState, error) {
	if !req.Action.Valid() {
		return backend.AnomalyState{}, fmt.Errorf("unknown treat action %q", req.Action)
	}
	if rec.AnomalyID == "" {
		return backend.AnomalyState{}, fmt.Errorf("anomaly id required")
	}

	state, err := s.backend.TreatAnomaly(ctx, rec.AnomalyID, req)
	if err != nil {
		return backend.AnomalyState{}, fmt.Errorf("treat anomaly %s: %w", rec.AnomalyID, err)
	}

	if err := s.cache.Record(ctx, rec, state.Status); err != nil {
		// The server accepted the decision; a failed local overlay only
		// costs staleness until the server's list catches up.
		s.log.Warn().Err(err).Str("anomaly", rec.AnomalyID).Msg("review decision not cached")
	}

	s.log.Info().Str("anomaly", rec.AnomalyID).Str("action", string(req.Action)).Msg("anomaly treated")
	return state, nil
}

// =============================================================================
// SUMMARY
// =============================================================================

// DaySummary compares planned and worked time for one day.
type DaySummary struct {
	Date          schedule.Date   `json:"date"`
	PlannedHours  decimal.Decimal `json:"planned_hours"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	VarianceHours decimal.Decimal `json:"variance_hours"`
}

// EmployeeSummary totals an employee's planned-vs-worked hours.
type EmployeeSummary struct {
	EmployeeID    string          `json:"employee_id"`
	From          schedule.Date   `json:"from"`
	To            schedule.Date   `json:"to"`
	Days          []DaySummary    `json:"days"`
	PlannedHours  decimal.Decimal `json:"planned_hours"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	VarianceHours decimal.Decimal `json:"variance_hours"`
}

// Summary totals planned versus captured hours per day. Open actuals
// (arrival without departure) count nothing rather than guessing.
func (s *Service) Summary(ctx context.Context, employeeID string, from, to schedule.Date) (*EmployeeSummary, error) {
	days, err := s.backend.Comparison(ctx, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch attendance: %w", err)
	}

	out := &EmployeeSummary{
		EmployeeID:    employeeID,
		From:          from,
		To:            to,
		PlannedHours:  decimal.Zero,
		WorkedHours:   decimal.Zero,
		VarianceHours: decimal.Zero,
	}

	for _, day := range days {
		plannedMinutes := 0
		if shift := s.board.Get(schedule.NewCellKey(day.EmployeeID, day.Date)); shift != nil {
			plannedMinutes = shift.PlannedMinutes()
		}

		workedMinutes := 0
		for _, a := range day.Actuals {
			if a.Arrival == nil || a.Departure == nil {
				continue
			}
			r := schedule.TimeRange{Start: *a.Arrival, End: *a.Departure}
			workedMinutes += r.Duration()
		}

		ds := DaySummary{
			Date:         day.Date,
			PlannedHours: schedule.HoursFromMinutes(plannedMinutes),
			WorkedHours:  schedule.HoursFromMinutes(workedMinutes),
		}
		ds.VarianceHours = ds.WorkedHours.Sub(ds.PlannedHours)
		out.Days = append(out.Days, ds)

		out.PlannedHours = out.PlannedHours.Add(ds.PlannedHours)
		out.WorkedHours = out.WorkedHours.Add(ds.WorkedHours)
	}
	out.VarianceHours = out.WorkedHours.Sub(out.PlannedHours)
	return out, nil
}
