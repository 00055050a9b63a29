package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// ADD / DELETE - Single-aggregate write paths
// =============================================================================

// AddRequest creates a segment in a cell, creating the shift if needed.
type AddRequest struct {
	Cell    CellRef          `json:"cell"`
	Segment schedule.Segment `json:"segment"`
}

// AddResult carries the persisted shift plus any policy warning.
type AddResult struct {
	Shift   *schedule.Shift `json:"shift"`
	Warning string          `json:"warning,omitempty"`
}

// AddSegment runs the same pre-flight gate as a move, then persists a
// single-shift write: create when the cell is empty, version-checked
// update otherwise. A stale version gets one refetch-and-retry.
func (s *Service) AddSegment(ctx context.Context, req AddRequest) (*AddResult, error) {
	if err := req.Segment.Validate(); err != nil {
		return nil, err
	}
	decision := s.Decide(req.Cell.EmployeeID, req.Cell.Date)
	if err := decision.Gate(req.Cell.EmployeeID, req.Cell.Date); err != nil {
		return nil, err
	}

	existing := s.board.Get(req.Cell.Key())
	if existing == nil {
		created, err := s.backend.CreateShift(ctx, schedule.Shift{
			EmployeeID: req.Cell.EmployeeID,
			Date:       req.Cell.Date,
			Kind:       schedule.ShiftWork,
			Segments:   []schedule.Segment{req.Segment},
		})
		if err != nil {
			return nil, fmt.Errorf("create shift: %w", err)
		}
		s.board.Put(&created)
		return &AddResult{Shift: created.Clone(), Warning: decision.Warning}, nil
	}

	if err := existing.CanAccept(req.Segment); err != nil {
		return nil, err
	}

	snap := s.board.Snapshot()
	optimistic := existing.Clone()
	optimistic.Segments = append(optimistic.Segments, req.Segment)
	s.board.Put(optimistic)

	updated, err := s.persistSingle(ctx, snap, *optimistic, req.Segment)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// The shift vanished server-side; the view was refetched.
		return &AddResult{Warning: "planning was changed by another user"}, nil
	}
	s.board.Put(updated)
	return &AddResult{Shift: updated.Clone(), Warning: decision.Warning}, nil
}

// DeleteSegment removes the segment at ref; an emptied shift is deleted
// outright. Approved leave on the cell blocks the edit like any other.
func (s *Service) DeleteSegment(ctx context.Context, ref SegmentRef) error {
	shift := s.board.Get(ref.Key())
	if shift == nil || ref.Index < 0 || ref.Index >= len(shift.Segments) {
		return &schedule.NotFoundError{Kind: "segment", ID: ref.Key().String()}
	}
	if err := s.Decide(ref.EmployeeID, ref.Date).Gate(ref.EmployeeID, ref.Date); err != nil {
		return err
	}

	snap := s.board.Snapshot()
	remaining := shift.Clone()
	remaining.Segments = append(remaining.Segments[:ref.Index], remaining.Segments[ref.Index+1:]...)

	if len(remaining.Segments) == 0 {
		s.board.Remove(ref.Key())
		if err := s.backend.DeleteShift(ctx, shift.ID); err != nil {
			if isNotFound(err) {
				// Already gone; the local removal stands.
				return nil
			}
			s.board.Restore(snap)
			return fmt.Errorf("delete shift: %w", err)
		}
		return nil
	}

	s.board.Put(remaining)
	updated, err := s.backend.UpdateShift(ctx, *remaining)
	if err != nil {
		if isNotFound(err) {
			if refetchErr := s.refetchShifts(ctx); refetchErr != nil {
				s.board.Restore(snap)
				return fmt.Errorf("update shift: %w (refetch also failed: %v)", err, refetchErr)
			}
			return nil
		}
		s.board.Restore(snap)
		return fmt.Errorf("update shift: %w", err)
	}
	s.board.Put(&updated)
	return nil
}

// SetAbsence records a full-day absence shift for a cell, replacing any
// existing shift there. Approved leave already covers the day, so the
// gate rejects the redundant write.
func (s *Service) SetAbsence(ctx context.Context, cell CellRef, reason string) (*schedule.Shift, error) {
	if err := s.Decide(cell.EmployeeID, cell.Date).Gate(cell.EmployeeID, cell.Date); err != nil {
		return nil, err
	}

	existing := s.board.Get(cell.Key())
	snap := s.board.Snapshot()

	absence := &schedule.Shift{
		EmployeeID: cell.EmployeeID,
		Date:       cell.Date,
		Kind:       schedule.ShiftAbsence,
		Reason:     reason,
	}

	if existing == nil {
		created, err := s.backend.CreateShift(ctx, *absence)
		if err != nil {
			return nil, fmt.Errorf("create absence: %w", err)
		}
		s.board.Put(&created)
		return created.Clone(), nil
	}

	absence.ID = existing.ID
	absence.Version = existing.Version
	s.board.Put(absence)

	updated, err := s.backend.UpdateShift(ctx, *absence)
	if err != nil {
		if isNotFound(err) {
			if refetchErr := s.refetchShifts(ctx); refetchErr != nil {
				s.board.Restore(snap)
				return nil, fmt.Errorf("update absence: %w (refetch also failed: %v)", err, refetchErr)
			}
			return nil, nil
		}
		s.board.Restore(snap)
		return nil, fmt.Errorf("update absence: %w", err)
	}
	s.board.Put(&updated)
	return updated.Clone(), nil
}

// persistSingle issues a version-checked update for one shift. A 409
// triggers one refetch, overlap re-check and retry. A 404 triggers a
// wholesale refetch and returns (nil, nil). Anything else rolls back.
func (s *Service) persistSingle(ctx context.Context, snap schedule.BoardSnapshot, payload schedule.Shift, seg schedule.Segment) (*schedule.Shift, error) {
	updated, err := s.backend.UpdateShift(ctx, payload)
	if err == nil {
		return &updated, nil
	}

	if errors.Is(err, schedule.ErrVersionConflict) {
		fresh, ferr := s.backend.GetShift(ctx, payload.ID)
		if ferr != nil {
			if isNotFound(ferr) {
				s.board.RemoveByID(payload.ID)
				return nil, nil
			}
			s.board.Restore(snap)
			return nil, fmt.Errorf("refetch shift: %w", ferr)
		}
		s.board.Put(&fresh)
		updated, err = s.writeSegmentOnto(ctx, fresh, seg)
		if err == nil {
			return &updated, nil
		}
		s.board.Restore(snap)
		return nil, fmt.Errorf("retry shift update: %w", err)
	}

	if isNotFound(err) {
		if refetchErr := s.refetchShifts(ctx); refetchErr != nil {
			s.board.Restore(snap)
			return nil, fmt.Errorf("update shift: %w (refetch also failed: %v)", err, refetchErr)
		}
		return nil, nil
	}

	s.board.Restore(snap)
	return nil, fmt.Errorf("update shift: %w", err)
}
