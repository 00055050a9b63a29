/*
classifier.go - Planned-vs-actual classification rules

RULES, IN PRIORITY ORDER (per planned segment):
  1. No actual record on a past-or-today date      -> absence, critical
  2. Both clocks within tolerance                  -> nothing emitted
  3. Arrival beyond the out-of-range bands         -> out_of_range_in, admin
  4. Arrival later than tolerance                  -> late (two tiers)
  5. Departure earlier than tolerance              -> early_departure (two tiers)
  6. Departure later than tolerance                -> overtime (auto-validated
                                                      below the auto band)
DAY-LEVEL RULES:
  - Actuals on a planned absence/rest day          -> unscheduled_presence, admin
  - Actuals with no planned segment at all         -> unscheduled, admin
  - Future dates are never classified.

Deltas are computed on the wall clock with wraparound awareness so a
23:55 arrival for a midnight start reads as 5 minutes early, not 1435
minutes late.
*/
package variance

import (
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// Classifier applies the threshold bands to one day of planning.
type Classifier struct {
	Thresholds Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{Thresholds: t}
}

// DayInput is everything needed to classify one (employee, day).
type DayInput struct {
	EmployeeID string
	Date       schedule.Date
	// Today anchors the future-date guard.
	Today schedule.Date
	// Planned is the work shift's ordered segment list. Empty with
	// PlannedAbsence false means a rest day.
	Planned []schedule.Segment
	// PlannedAbsence marks an absence shift covering the day.
	PlannedAbsence bool
	Actuals        []Actual
}

// ClassifyDay emits the day's variance records. Statuses default to
// pending; linking to server anomalies happens upstream.
func (c *Classifier) ClassifyDay(in DayInput) []Record {
	if in.Date.After(in.Today) {
		return nil
	}

	var out []Record

	// Last capture per segment index wins: a re-clock for the same
	// segment supersedes the earlier entry.
	actualByIndex := make(map[int]Actual, len(in.Actuals))
	for _, a := range in.Actuals {
		actualByIndex[a.SegmentIndex] = a
	}

	if in.PlannedAbsence || len(in.Planned) == 0 {
		// Nothing was planned; any capture at all is a presence nobody
		// scheduled.
		kind := KindUnscheduled
		if in.PlannedAbsence {
			kind = KindUnscheduledPresence
		}
		for _, a := range in.Actuals {
			out = append(out, c.unplannedRecord(in, a, kind))
		}
		return out
	}

	for i, seg := range in.Planned {
		actual, captured := actualByIndex[i]
		if !captured {
			out = append(out, Record{
				EmployeeID:   in.EmployeeID,
				Date:         in.Date,
				Kind:         KindAbsence,
				Graveness:    GravenessCritical,
				Status:       StatusPending,
				SegmentIndex: i,
				Minutes:      seg.Range.Duration(),
			})
			continue
		}
		out = append(out, c.classifySegment(in, i, seg, actual)...)
		delete(actualByIndex, i)
	}

	// Captures with no planned counterpart on an otherwise worked day.
	for _, a := range in.Actuals {
		if _, stillUnmatched := actualByIndex[a.SegmentIndex]; stillUnmatched && a.SegmentIndex >= len(in.Planned) {
			out = append(out, c.unplannedRecord(in, a, KindUnscheduled))
		}
	}

	return out
}

// classifySegment compares one planned segment to its capture. Minor
// kinds co-occur: a late arrival does not mask an overtime departure.
func (c *Classifier) classifySegment(in DayInput, index int, seg schedule.Segment, actual Actual) []Record {
	t := c.Thresholds
	var out []Record

	base := Record{
		EmployeeID:    in.EmployeeID,
		Date:          in.Date,
		Status:        StatusPending,
		SegmentIndex:  index,
		RealArrival:   actual.Arrival,
		RealDeparture: actual.Departure,
	}

	if actual.Arrival != nil {
		delta := clockDelta(*actual.Arrival, seg.Range.Start)
		switch {
		case delta > t.OutOfRangeLate || delta < -t.EarlyArrivalBand:
			r := base
			r.Kind = KindOutOfRangeIn
			r.Graveness = GravenessCritical
			r.NeedsAdmin = true
			r.Minutes = abs(delta)
			out = append(out, r)
		case delta > t.Tolerance:
			r := base
			r.Kind = KindLate
			r.Minutes = delta
			r.Graveness = GravenessAttention
			if delta > t.SevereLate {
				r.Graveness = GravenessCritical
			}
			out = append(out, r)
		}
	}

	if actual.Departure != nil {
		delta := clockDelta(*actual.Departure, seg.Range.End)
		switch {
		case delta < -t.Tolerance:
			r := base
			r.Kind = KindEarlyDeparture
			r.Minutes = -delta
			r.Graveness = GravenessAttention
			if -delta > t.SevereEarlyLeave {
				r.Graveness = GravenessCritical
			}
			out = append(out, r)
		case delta > t.Tolerance:
			r := base
			r.Kind = KindOvertime
			r.Minutes = delta
			if delta <= t.OvertimeAuto {
				r.Graveness = GravenessInfo
				r.AutoValidated = true
				r.Status = StatusValidated
			} else {
				r.Graveness = GravenessAttention
				r.NeedsAdmin = true
			}
			out = append(out, r)
		}
	}

	return out
}

func (c *Classifier) unplannedRecord(in DayInput, a Actual, kind Kind) Record {
	minutes := 0
	if a.Arrival != nil && a.Departure != nil {
		minutes = schedule.TimeRange{Start: *a.Arrival, End: *a.Departure}.Duration()
	}
	return Record{
		EmployeeID:    in.EmployeeID,
		Date:          in.Date,
		Kind:          kind,
		Graveness:     GravenessCritical,
		Status:        StatusPending,
		SegmentIndex:  a.SegmentIndex,
		Minutes:       minutes,
		NeedsAdmin:    true,
		RealArrival:   a.Arrival,
		RealDeparture: a.Departure,
	}
}

// clockDelta returns the signed wall-clock distance from planned to
// actual, folded into (-12h, +12h] so midnight-adjacent comparisons stay
// sane for night shifts.
func clockDelta(actual, planned schedule.Clock) int {
	d := int(actual) - int(planned)
	if d > schedule.MinutesPerDay/2 {
		d -= schedule.MinutesPerDay
	}
	if d <= -schedule.MinutesPerDay/2 {
		d += schedule.MinutesPerDay
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
