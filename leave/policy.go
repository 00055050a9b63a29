package leave

import (
	"fmt"

	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// INTERACTION POLICY - How a covering leave constrains a cell
// =============================================================================

// Effect is the policy outcome for one scheduling action.
type Effect int

const (
	// EffectAllow permits the action with no caveat.
	EffectAllow Effect = iota
	// EffectWarn permits the action but carries a warning for the user.
	EffectWarn
	// EffectBlock rejects the action outright.
	EffectBlock
)

// Decision is the policy verdict for one (employee, day) cell.
type Decision struct {
	Effect Effect
	Leave  *Leave
	// Warning is surfaced to the user on EffectWarn, and as the discreet
	// refused-leave indicator on EffectAllow with a refused leave.
	Warning string
	// HideShift marks the existing shift as hidden from the editable view.
	HideShift bool
}

// Policy evaluates leave coverage for scheduling actions. One instance is
// shared by every write entry point.
type Policy struct {
	Leaves *Index
}

func NewPolicy(idx *Index) *Policy {
	return &Policy{Leaves: idx}
}

// Decide returns the verdict for scheduling into (employeeID, date):
//   - no covering leave: unrestricted
//   - approved: blocked, existing shift hidden
//   - pending: allowed with a warning that a later approval may conflict
//   - refused: allowed, discreet indicator only
func (p *Policy) Decide(employeeID string, date schedule.Date) Decision {
	cover := p.Leaves.CoverFor(employeeID, date)
	if cover == nil {
		return Decision{Effect: EffectAllow}
	}

	switch cover.Status {
	case StatusApproved:
		return Decision{
			Effect:    EffectBlock,
			Leave:     cover,
			HideShift: true,
		}
	case StatusPending:
		return Decision{
			Effect:  EffectWarn,
			Leave:   cover,
			Warning: fmt.Sprintf("a pending %s leave covers %s; approval may conflict with this planning", cover.Type, date),
		}
	case StatusRefused:
		return Decision{
			Effect:  EffectAllow,
			Leave:   cover,
			Warning: fmt.Sprintf("a refused %s leave covers %s", cover.Type, date),
		}
	default:
		// Unknown status is treated like no restriction; the record is
		// carried so callers can still display it.
		return Decision{Effect: EffectAllow, Leave: cover}
	}
}

// Gate converts a blocking decision into the shared error taxonomy.
// Nil for warn/allow: warnings travel on the Decision, not as errors.
func (d Decision) Gate(employeeID string, date schedule.Date) error {
	if d.Effect != EffectBlock {
		return nil
	}
	leaveID := ""
	if d.Leave != nil {
		leaveID = d.Leave.ID
	}
	return &schedule.LeaveConflictError{
		EmployeeID: employeeID,
		Date:       date,
		LeaveID:    leaveID,
	}
}
