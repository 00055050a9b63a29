package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS SUMMARY - Planned workload totals for reporting
// =============================================================================

var sixty = decimal.NewFromInt(60)

// HoursFromMinutes converts whole minutes to decimal hours without
// floating-point drift (90 minutes -> 1.5 hours exactly).
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty)
}

// PlannedSummary aggregates one employee's planned workload over a range.
type PlannedSummary struct {
	EmployeeID   string          `json:"employee_id"`
	From         Date            `json:"from"`
	To           Date            `json:"to"`
	WorkDays     int             `json:"work_days"`
	AbsenceDays  int             `json:"absence_days"`
	Segments     int             `json:"segments"`
	ExtraHours   decimal.Decimal `json:"extra_hours"`
	PlannedHours decimal.Decimal `json:"planned_hours"`
}

// Summarize totals planned hours for one employee over [from, to].
func (b *Board) Summarize(employeeID string, from, to Date) PlannedSummary {
	sum := PlannedSummary{
		EmployeeID:   employeeID,
		From:         from,
		To:           to,
		ExtraHours:   decimal.Zero,
		PlannedHours: decimal.Zero,
	}

	for _, shift := range b.ForEmployee(employeeID, from, to) {
		if shift.Kind == ShiftAbsence {
			sum.AbsenceDays++
			continue
		}
		sum.WorkDays++
		for _, seg := range shift.Segments {
			sum.Segments++
			hours := HoursFromMinutes(seg.Range.Duration())
			sum.PlannedHours = sum.PlannedHours.Add(hours)
			if seg.Extra {
				sum.ExtraHours = sum.ExtraHours.Add(hours)
			}
		}
	}
	return sum
}
