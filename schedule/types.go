/*
Package schedule provides the core planning engine.

PURPOSE:
  This package contains the domain types and algorithms shared by every
  scheduling entry point: per-employee daily work segments, the shifts that
  own them, day-granularity dates, and the in-memory planning board that
  mirrors server state between writes.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar day (no clock component, no timezone math)
  - Segment: One contiguous planned work interval within a Shift
  - Shift: The segments (or a single absence reason) for one employee/day
  - CellKey: The (employee, day) coordinate a Shift occupies

DESIGN PRINCIPLES:
  1. Shifts carry an integer version; a write is accepted only when the
     caller's version matches the server's current one.
  2. Segments are owned exclusively by one Shift and cloned on move.
  3. Validation lives next to the types so every write path shares it.

SEE ALSO:
  - timerange.go: Overlap detection between segments
  - board.go: In-memory Shift collection with snapshot/restore
  - errors.go: Error taxonomy shared by all entry points
*/
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day
// =============================================================================

// Date is a calendar day at day granularity. The zero value is "no date".
type Date struct {
	Time time.Time
}

// NewDate builds a Date pinned to UTC midnight so values compare cleanly.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("malformed date %q: %w", s, err)
	}
	return Date{Time: t.UTC()}, nil
}

// Today returns the current calendar day.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) IsZero() bool       { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

// MarshalJSON encodes the date in its wire form, "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses the "YYYY-MM-DD" wire form.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the whole-day distance from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// EMPLOYEE - Read-only input to the planning core
// =============================================================================

type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// SEGMENT - One planned work interval
// =============================================================================

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Segment is one contiguous planned interval within a work Shift.
type Segment struct {
	Range           TimeRange     `json:"range"`
	Extra           bool          `json:"is_extra"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PendingApproval bool          `json:"pending_approval"`
	Comment         string        `json:"comment,omitempty"`
}

// Validate checks the segment's time range. A night range is legal,
// a zero-duration one is not.
func (s Segment) Validate() error {
	return s.Range.Validate()
}

// =============================================================================
// SHIFT - All planning for one employee on one day
// =============================================================================

type ShiftKind string

const (
	ShiftWork    ShiftKind = "work"
	ShiftAbsence ShiftKind = "absence"
)

// Shift is the planning record for one (employee, day) cell. Work shifts
// carry segments; absence shifts carry a reason text instead.
type Shift struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       Date      `json:"date"`
	Kind       ShiftKind `json:"kind"`
	Segments   []Segment `json:"segments,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Version    int       `json:"version"`
}

// Cell returns the board coordinate this shift occupies.
func (s *Shift) Cell() CellKey {
	return CellKey{EmployeeID: s.EmployeeID, Day: s.Date.String()}
}

// Clone returns a deep copy, segments included.
func (s *Shift) Clone() *Shift {
	cp := *s
	if s.Segments != nil {
		cp.Segments = make([]Segment, len(s.Segments))
		copy(cp.Segments, s.Segments)
	}
	return &cp
}

// Validate enforces the no-pairwise-overlap invariant across the shift's
// segments, night wraparound included, and validates each segment.
func (s *Shift) Validate() error {
	for i, seg := range s.Segments {
		if err := seg.Validate(); err != nil {
			return err
		}
		for j := i + 1; j < len(s.Segments); j++ {
			if Overlaps(seg.Range, s.Segments[j].Range) {
				return &OverlapError{New: seg.Range, Existing: s.Segments[j].Range}
			}
		}
	}
	return nil
}

// CanAccept reports whether a new segment fits the shift without
// overlapping any existing segment.
func (s *Shift) CanAccept(seg Segment) error {
	if err := seg.Validate(); err != nil {
		return err
	}
	for _, existing := range s.Segments {
		if Overlaps(seg.Range, existing.Range) {
			return &OverlapError{New: seg.Range, Existing: existing.Range}
		}
	}
	return nil
}

// PlannedMinutes sums segment durations, wraparound included.
func (s *Shift) PlannedMinutes() int {
	total := 0
	for _, seg := range s.Segments {
		total += seg.Range.Duration()
	}
	return total
}

// =============================================================================
// CELL KEY - Board coordinate
// =============================================================================

// CellKey identifies one (employee, day) cell of the planning board.
// Day is the Date string form so keys stay comparable.
type CellKey struct {
	EmployeeID string
	Day        string
}

func NewCellKey(employeeID string, date Date) CellKey {
	return CellKey{EmployeeID: employeeID, Day: date.String()}
}

func (k CellKey) String() string {
	return k.EmployeeID + "@" + k.Day
}
