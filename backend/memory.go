/*
memory.go - In-memory backend fake

Implements the full Client surface over maps, with the same version
semantics as the real server: updates are accepted only when the carried
version matches, and every accepted write bumps the version. Tests
inject failures per operation to drive the move saga's recovery paths.
*/
package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/Yamine-coder/gestion-rh-sub000/leave"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// Memory is an in-memory Client for tests and local development.
type Memory struct {
	mu       sync.Mutex
	nextID   int
	shifts   map[string]*schedule.Shift
	leaves   []leave.Leave
	days     map[string][]AttendanceDay // employeeID -> days
	statuses map[string]AnomalyState    // anomalyID -> state

	failures map[string][]error // op -> queued errors
	calls    map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		shifts:   make(map[string]*schedule.Shift),
		days:     make(map[string][]AttendanceDay),
		statuses: make(map[string]AnomalyState),
		failures: make(map[string][]error),
		calls:    make(map[string]int),
	}
}

// =============================================================================
// TEST CONTROLS
// =============================================================================

// FailNext queues an error for the next call(s) of op, consumed in order.
// Op names match the Client method names.
func (m *Memory) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = append(m.failures[op], errs...)
}

// Calls reports how many times op was invoked (failed calls included).
func (m *Memory) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// SeedShift installs a shift under its own id without version bumping.
func (m *Memory) SeedShift(s schedule.Shift) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shifts[s.ID] = s.Clone()
}

// SeedLeaves replaces the leave list.
func (m *Memory) SeedLeaves(leaves []leave.Leave) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaves = append([]leave.Leave(nil), leaves...)
}

// SeedAttendance replaces one employee's comparison data. The anomaly
// refs it carries are registered as treatable server anomalies too, the
// same way the real server knows every anomaly it reports.
func (m *Memory) SeedAttendance(employeeID string, days []AttendanceDay) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[employeeID] = append([]AttendanceDay(nil), days...)
	for _, d := range days {
		for _, ref := range d.Anomalies {
			m.statuses[ref.ID] = AnomalyState{ID: ref.ID, Status: ref.Status}
		}
	}
}

// SeedAnomaly installs a server-side anomaly state.
func (m *Memory) SeedAnomaly(state AnomalyState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[state.ID] = state
}

// ShiftByID returns the server's current copy, or nil.
func (m *Memory) ShiftByID(id string) *schedule.Shift {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shifts[id]; ok {
		return s.Clone()
	}
	return nil
}

// MutateShift applies fn to the stored shift and bumps its version,
// simulating a concurrent edit by another actor.
func (m *Memory) MutateShift(id string, fn func(*schedule.Shift)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shifts[id]; ok {
		fn(s)
		s.Version++
	}
}

// DropShift removes a shift behind the client's back.
func (m *Memory) DropShift(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shifts, id)
}

func (m *Memory) fail(op string) error {
	m.calls[op]++
	queue := m.failures[op]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	m.failures[op] = queue[1:]
	return err
}

// =============================================================================
// SHIFT SERVICE
// =============================================================================

func (m *Memory) ListShifts(_ context.Context, q ShiftQuery) ([]schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListShifts"); err != nil {
		return nil, err
	}

	var out []schedule.Shift
	for _, s := range m.shifts {
		if q.EmployeeID != "" && s.EmployeeID != q.EmployeeID {
			continue
		}
		if q.From != nil && s.Date.Before(*q.From) {
			continue
		}
		if q.To != nil && s.Date.After(*q.To) {
			continue
		}
		out = append(out, *s.Clone())
	}
	return out, nil
}

func (m *Memory) GetShift(_ context.Context, id string) (schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetShift"); err != nil {
		return schedule.Shift{}, err
	}

	s, ok := m.shifts[id]
	if !ok {
		return schedule.Shift{}, &schedule.NotFoundError{Kind: "shift", ID: id}
	}
	return *s.Clone(), nil
}

func (m *Memory) CreateShift(_ context.Context, s schedule.Shift) (schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateShift"); err != nil {
		return schedule.Shift{}, err
	}

	m.nextID++
	created := s.Clone()
	created.ID = fmt.Sprintf("srv-%d", m.nextID)
	created.Version = 0
	m.shifts[created.ID] = created
	return *created.Clone(), nil
}

func (m *Memory) UpdateShift(_ context.Context, s schedule.Shift) (schedule.Shift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateShift"); err != nil {
		return schedule.Shift{}, err
	}

	current, ok := m.shifts[s.ID]
	if !ok {
		return schedule.Shift{}, &schedule.NotFoundError{Kind: "shift", ID: s.ID}
	}
	if current.Version != s.Version {
		return schedule.Shift{}, &schedule.VersionConflictError{ShiftID: s.ID, Version: s.Version}
	}

	updated := s.Clone()
	updated.Version = current.Version + 1
	m.shifts[s.ID] = updated
	return *updated.Clone(), nil
}

func (m *Memory) DeleteShift(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteShift"); err != nil {
		return err
	}

	if _, ok := m.shifts[id]; !ok {
		return &schedule.NotFoundError{Kind: "shift", ID: id}
	}
	delete(m.shifts, id)
	return nil
}

// =============================================================================
// LEAVE SERVICE
// =============================================================================

func (m *Memory) ListLeaves(_ context.Context) ([]leave.Leave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ListLeaves"); err != nil {
		return nil, err
	}
	return append([]leave.Leave(nil), m.leaves...), nil
}

// =============================================================================
// ATTENDANCE SERVICE
// =============================================================================

func (m *Memory) Comparison(_ context.Context, employeeID string, from, to schedule.Date) ([]AttendanceDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Comparison"); err != nil {
		return nil, err
	}

	var out []AttendanceDay
	for _, d := range m.days[employeeID] {
		if d.Date.AfterOrEqual(from) && d.Date.BeforeOrEqual(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) TreatAnomaly(_ context.Context, id string, req TreatRequest) (AnomalyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("TreatAnomaly"); err != nil {
		return AnomalyState{}, err
	}

	if _, ok := m.statuses[id]; !ok {
		return AnomalyState{}, &schedule.NotFoundError{Kind: "anomaly", ID: id}
	}
	state := AnomalyState{ID: id, Status: req.Action.StatusFor()}
	m.statuses[id] = state
	return state, nil
}
