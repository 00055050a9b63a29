/*
Package variance compares planned segments to actual attendance records
and classifies the deviations managers review.

PURPOSE:
  One planned Segment plus the matching clock-in/out record (or its
  absence) yields zero or more variance records. Several minor kinds can
  co-occur on one segment (late arrival AND overtime departure). Future
  dates are never classified.

KEY CONCEPTS IN THIS FILE (types.go):
  - Kind: what deviated (absence, late, overtime, ...)
  - Graveness: how loudly to surface it (info, attention, critical)
  - Status: review lifecycle, server-owned, locally overridable
  - Thresholds: the tolerance bands, injectable for tests and tenant config

SEE ALSO:
  - classifier.go: The classification rules, in priority order
  - ../reconcile: TTL override cache applied before presenting records
*/
package variance

import (
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// ENUMS
// =============================================================================

type Kind string

const (
	KindAbsence             Kind = "absence"
	KindLate                Kind = "late"
	KindEarlyDeparture      Kind = "early_departure"
	KindOvertime            Kind = "overtime"
	KindOutOfRangeIn        Kind = "out_of_range_in"
	KindUnscheduledPresence Kind = "unscheduled_presence"
	KindUnscheduled         Kind = "unscheduled"
)

type Graveness string

const (
	GravenessInfo      Graveness = "info"
	GravenessAttention Graveness = "attention"
	GravenessCritical  Graveness = "critical"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusValidated Status = "validated"
	StatusRefused   Status = "refused"
	StatusCorrected Status = "corrected"
)

// =============================================================================
// ACTUAL - One captured clock-in/out record
// =============================================================================

// Actual is the attendance capture matched to one planned segment ordinal.
// A nil clock means that side was never captured.
type Actual struct {
	SegmentIndex int             `json:"segment_index"`
	Arrival      *schedule.Clock `json:"arrival,omitempty"`
	Departure    *schedule.Clock `json:"departure,omitempty"`
}

// =============================================================================
// RECORD - One classified deviation
// =============================================================================

// Record is one planned-vs-actual deviation. AnomalyID is empty until the
// record is linked to a server-side anomaly.
type Record struct {
	AnomalyID     string          `json:"anomaly_id,omitempty"`
	EmployeeID    string          `json:"employee_id"`
	Date          schedule.Date   `json:"date"`
	Kind          Kind            `json:"kind"`
	Graveness     Graveness       `json:"graveness"`
	Status        Status          `json:"status"`
	SegmentIndex  int             `json:"segment_index"`
	Minutes       int             `json:"minutes"`
	NeedsAdmin    bool            `json:"needs_admin"`
	AutoValidated bool            `json:"auto_validated,omitempty"`
	RealArrival   *schedule.Clock `json:"real_arrival,omitempty"`
	RealDeparture *schedule.Clock `json:"real_departure,omitempty"`
}

// =============================================================================
// THRESHOLDS - Tolerance bands, in minutes
// =============================================================================

// Thresholds holds the classification bands. All values are minutes.
type Thresholds struct {
	// Tolerance is the band around planned times inside which arrival and
	// departure count as on-time.
	Tolerance int
	// SevereLate splits late arrivals into attention vs critical.
	SevereLate int
	// OutOfRangeLate is the lateness beyond which an arrival stops being
	// "late" and becomes out-of-range, always needing admin action.
	OutOfRangeLate int
	// EarlyArrivalBand is how early an arrival may be before it is
	// out-of-range as well.
	EarlyArrivalBand int
	// SevereEarlyLeave splits early departures into attention vs critical.
	SevereEarlyLeave int
	// OvertimeAuto is the overtime below which the variance is
	// auto-validated; above it admin validation is required.
	OvertimeAuto int
}

// DefaultThresholds returns the product defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Tolerance:        5,
		SevereLate:       15,
		OutOfRangeLate:   60,
		EarlyArrivalBand: 120,
		SevereEarlyLeave: 15,
		OvertimeAuto:     30,
	}
}
