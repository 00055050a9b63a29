/*
board.go - In-memory planning board

PURPOSE:
  Holds the local mirror of server-owned Shift state between writes.
  The move saga mutates the board optimistically, keeps a deep snapshot
  for compensation, and replaces the whole board wholesale after a
  refetch when the server disagrees.

LIFECYCLE:
  Built at session start, filled by the first shift fetch, torn down with
  the session. Passed by handle to every consumer; no package-level state.

CONCURRENCY:
  Guarded by a RWMutex so HTTP handlers and the periodic variance
  refresher can read concurrently. Writers hold the lock for the whole
  read-modify-write sequence.
*/
package schedule

import (
	"sort"
	"sync"
)

// Board is the in-memory Shift collection, one Shift per (employee, day).
type Board struct {
	mu     sync.RWMutex
	shifts map[CellKey]*Shift
}

func NewBoard() *Board {
	return &Board{shifts: make(map[CellKey]*Shift)}
}

// Get returns a deep copy of the shift in a cell, or nil.
func (b *Board) Get(key CellKey) *Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if s, ok := b.shifts[key]; ok {
		return s.Clone()
	}
	return nil
}

// GetByID returns a deep copy of the shift with the given id, or nil.
func (b *Board) GetByID(id string) *Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.shifts {
		if s.ID == id {
			return s.Clone()
		}
	}
	return nil
}

// Put stores a deep copy of the shift in its cell.
func (b *Board) Put(s *Shift) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shifts[s.Cell()] = s.Clone()
}

// Remove deletes the shift in a cell, if any.
func (b *Board) Remove(key CellKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.shifts, key)
}

// RemoveByID deletes the shift with the given id, if any.
func (b *Board) RemoveByID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for k, s := range b.shifts {
		if s.ID == id {
			delete(b.shifts, k)
			return
		}
	}
}

// All returns deep copies of every shift, ordered by employee then day.
func (b *Board) All() []*Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*Shift, 0, len(b.shifts))
	for _, s := range b.shifts {
		out = append(out, s.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// ForEmployee returns deep copies of one employee's shifts within [from, to].
func (b *Board) ForEmployee(employeeID string, from, to Date) []*Shift {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Shift
	for _, s := range b.shifts {
		if s.EmployeeID != employeeID {
			continue
		}
		if s.Date.AfterOrEqual(from) && s.Date.BeforeOrEqual(to) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// ReplaceAll swaps the whole board for a freshly fetched shift list.
// This is the refetch-and-replace recovery path: no merging, the fetch
// already reflects server truth.
func (b *Board) ReplaceAll(shifts []Shift) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shifts = make(map[CellKey]*Shift, len(shifts))
	for i := range shifts {
		s := shifts[i]
		b.shifts[s.Cell()] = s.Clone()
	}
}

// =============================================================================
// SNAPSHOT / RESTORE - Compensation support for the move saga
// =============================================================================

// BoardSnapshot is an opaque deep copy of the board's state.
type BoardSnapshot struct {
	shifts map[CellKey]*Shift
}

// Snapshot captures the full collection for a later rollback.
func (b *Board) Snapshot() BoardSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	cp := make(map[CellKey]*Shift, len(b.shifts))
	for k, s := range b.shifts {
		cp[k] = s.Clone()
	}
	return BoardSnapshot{shifts: cp}
}

// Restore rolls the board back to a snapshot taken earlier.
func (b *Board) Restore(snap BoardSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shifts = make(map[CellKey]*Shift, len(snap.shifts))
	for k, s := range snap.shifts {
		b.shifts[k] = s.Clone()
	}
}
