/*
Package planner implements the scheduling write paths.

PURPOSE:
  Every action that writes segments into the planning board goes through
  this service: drag-drop moves, quick creates, edits, deletions. Each
  path runs the same pre-flight checks (segment validity, leave policy,
  overlap) before touching anything, then applies an optimistic local
  update and persists it with version-checked writes.

MOVE SAGA:
  Relocating a segment touches two aggregates (source shift, destination
  shift) with no cross-aggregate transaction on the server. The move is
  a two-phase optimistic commit with compensation:

    a. snapshot the board
    b. apply the optimistic local update
    c. persist the source side (delete-by-id if emptied, else a
       version-checked update)
    d. persist the destination side (refetch version first, then a
       version-checked update; or a create when the cell was empty)
    e. replace the local placeholder with the server's returned object

  Recovery: 404 anywhere means another actor won; refetch the whole view
  and replace local state wholesale. A destination 409 gets one
  refetch-and-replace attempt. Anything unresolved, and any network/5xx
  failure, rolls the board back to the step-(a) snapshot. Partial success
  (source committed, destination failed) is a known limitation of the
  two-aggregate design; every failure path still ends in either a
  rollback or a server-authoritative local state.
*/
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/leave"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// SERVICE
// =============================================================================

// Service owns the planning board and runs all scheduling writes.
type Service struct {
	backend backend.Client
	board   *schedule.Board
	log     zerolog.Logger
	newID   func() string

	mu     sync.RWMutex
	policy *leave.Policy
}

func New(client backend.Client, board *schedule.Board, log zerolog.Logger) *Service {
	return &Service{
		backend: client,
		board:   board,
		log:     log.With().Str("component", "planner").Logger(),
		newID:   func() string { return "local-" + uuid.NewString() },
		policy:  leave.NewPolicy(leave.NewIndex(nil)),
	}
}

// Board exposes the local shift state for read paths.
func (s *Service) Board() *schedule.Board { return s.board }

// Decide evaluates the leave policy for one cell. Exposed so read paths
// can hide cells and surface indicators consistently with write paths.
func (s *Service) Decide(employeeID string, date schedule.Date) leave.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy.Decide(employeeID, date)
}

// Refresh replaces local shift and leave state wholesale from the server.
// This is the user-driven resync path; background jobs must use
// RefreshLeaves so an in-flight optimistic shift edit is never clobbered
// between its local apply and its persistence.
func (s *Service) Refresh(ctx context.Context) error {
	shifts, err := s.backend.ListShifts(ctx, backend.ShiftQuery{})
	if err != nil {
		return fmt.Errorf("refresh shifts: %w", err)
	}
	if err := s.RefreshLeaves(ctx); err != nil {
		return err
	}

	s.board.ReplaceAll(shifts)
	s.log.Debug().Int("shifts", len(shifts)).Msg("local state replaced")
	return nil
}

// RefreshLeaves replaces only the leave view, leaving shift state alone.
func (s *Service) RefreshLeaves(ctx context.Context) error {
	leaves, err := s.backend.ListLeaves(ctx)
	if err != nil {
		return fmt.Errorf("refresh leaves: %w", err)
	}

	s.mu.Lock()
	s.policy = leave.NewPolicy(leave.NewIndex(leaves))
	s.mu.Unlock()

	s.log.Debug().Int("leaves", len(leaves)).Msg("leave view replaced")
	return nil
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CellRef addresses one (employee, day) cell.
type CellRef struct {
	EmployeeID string        `json:"employee_id"`
	Date       schedule.Date `json:"date"`
}

func (c CellRef) Key() schedule.CellKey { return schedule.NewCellKey(c.EmployeeID, c.Date) }

// SegmentRef addresses one segment inside a cell's shift.
type SegmentRef struct {
	CellRef
	Index int `json:"index"`
}

// MoveRequest relocates one segment between cells.
type MoveRequest struct {
	From SegmentRef `json:"from"`
	To   CellRef    `json:"to"`
}

// MoveOutcome says how a move concluded.
type MoveOutcome string

const (
	// OutcomeMoved means both sides committed.
	OutcomeMoved MoveOutcome = "moved"
	// OutcomeNoop means source and destination were the same cell.
	OutcomeNoop MoveOutcome = "noop"
	// OutcomeRefetched means another actor changed the view concurrently;
	// local state was replaced with server truth instead of moved.
	OutcomeRefetched MoveOutcome = "refetched"
)

// MoveResult reports the outcome plus any policy warning to surface.
type MoveResult struct {
	Outcome MoveOutcome `json:"outcome"`
	Warning string      `json:"warning,omitempty"`
}

// =============================================================================
// MOVE - The two-phase optimistic relocation
// =============================================================================

// MoveSegment relocates the segment at req.From to req.To per the saga
// described in the package comment. Pre-flight failures reject before
// any mutation or network call.
func (s *Service) MoveSegment(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	// Pre-flight: the segment must exist and be well-formed.
	srcShift := s.board.Get(req.From.Key())
	if srcShift == nil || req.From.Index < 0 || req.From.Index >= len(srcShift.Segments) {
		return nil, &schedule.NotFoundError{Kind: "segment", ID: req.From.Key().String()}
	}
	seg := srcShift.Segments[req.From.Index]
	if err := seg.Validate(); err != nil {
		return nil, err
	}

	// Same cell: nothing to do.
	if req.From.EmployeeID == req.To.EmployeeID && req.From.Date.Equal(req.To.Date) {
		return &MoveResult{Outcome: OutcomeNoop}, nil
	}

	// Pre-flight: leave policy on the destination cell.
	decision := s.Decide(req.To.EmployeeID, req.To.Date)
	if err := decision.Gate(req.To.EmployeeID, req.To.Date); err != nil {
		return nil, err
	}

	// Pre-flight: no overlap with segments already in the destination.
	destShift := s.board.Get(req.To.Key())
	if destShift != nil {
		if err := destShift.CanAccept(seg); err != nil {
			return nil, err
		}
	}

	// (a) Snapshot for compensation.
	snap := s.board.Snapshot()

	// (b) Optimistic local update.
	newSrc := srcShift.Clone()
	newSrc.Segments = append(newSrc.Segments[:req.From.Index], newSrc.Segments[req.From.Index+1:]...)
	srcEmptied := len(newSrc.Segments) == 0
	if srcEmptied {
		s.board.Remove(req.From.Key())
	} else {
		s.board.Put(newSrc)
	}

	var placeholder *schedule.Shift
	if destShift != nil {
		newDest := destShift.Clone()
		newDest.Segments = append(newDest.Segments, seg)
		s.board.Put(newDest)
	} else {
		placeholder = &schedule.Shift{
			ID:         s.newID(),
			EmployeeID: req.To.EmployeeID,
			Date:       req.To.Date,
			Kind:       schedule.ShiftWork,
			Segments:   []schedule.Segment{seg},
		}
		s.board.Put(placeholder)
	}

	// (c) Persist the source side.
	if srcEmptied {
		if err := s.backend.DeleteShift(ctx, srcShift.ID); err != nil {
			return s.recoverMove(ctx, snap, "delete source shift", err)
		}
	} else {
		updated, err := s.backend.UpdateShift(ctx, *newSrc)
		if err != nil {
			return s.recoverMove(ctx, snap, "update source shift", err)
		}
		s.board.Put(&updated)
	}

	// (d) Persist the destination side.
	if destShift == nil {
		payload := placeholder.Clone()
		payload.ID = "" // server assigns the real id
		created, err := s.backend.CreateShift(ctx, *payload)
		if err != nil {
			return s.recoverMove(ctx, snap, "create destination shift", err)
		}
		// (e) The placeholder occupies the same cell; the server object
		// replaces it.
		s.board.Put(&created)
		return &MoveResult{Outcome: OutcomeMoved, Warning: decision.Warning}, nil
	}

	result, err := s.persistExistingDestination(ctx, snap, destShift.ID, seg)
	if err != nil {
		return nil, err
	}
	if result.Outcome == OutcomeMoved {
		result.Warning = decision.Warning
	}
	return result, nil
}

// persistExistingDestination refetches the destination's current version,
// applies the moved segment on top and writes it back. One 409 gets one
// refetch-and-replace attempt before giving up.
func (s *Service) persistExistingDestination(ctx context.Context, snap schedule.BoardSnapshot, destID string, seg schedule.Segment) (*MoveResult, error) {
	fresh, err := s.backend.GetShift(ctx, destID)
	if err != nil {
		return s.recoverMove(ctx, snap, "refetch destination shift", err)
	}

	updated, err := s.writeSegmentOnto(ctx, fresh, seg)
	if err == nil {
		s.board.Put(&updated)
		return &MoveResult{Outcome: OutcomeMoved}, nil
	}

	if !errors.Is(err, schedule.ErrVersionConflict) {
		return s.recoverMove(ctx, snap, "update destination shift", err)
	}

	// One refetch-and-replace attempt on a stale version.
	fresh, err = s.backend.GetShift(ctx, destID)
	if err != nil {
		if isNotFound(err) {
			// The destination vanished between the conflict and the refetch:
			// drop the local copy rather than retrying the write.
			s.board.RemoveByID(destID)
			s.log.Warn().Str("shift", destID).Msg("destination removed concurrently; local copy dropped")
			return &MoveResult{Outcome: OutcomeRefetched, Warning: "destination was removed by another user"}, nil
		}
		return s.recoverMove(ctx, snap, "refetch destination shift", err)
	}

	// Local state now holds the one server-authoritative copy.
	s.board.Put(&fresh)

	updated, err = s.writeSegmentOnto(ctx, fresh, seg)
	if err != nil {
		return s.recoverMove(ctx, snap, "retry destination shift", err)
	}
	s.board.Put(&updated)
	return &MoveResult{Outcome: OutcomeMoved}, nil
}

// writeSegmentOnto overlap-checks and appends seg to the server's copy,
// then issues the version-checked update.
func (s *Service) writeSegmentOnto(ctx context.Context, current schedule.Shift, seg schedule.Segment) (schedule.Shift, error) {
	if err := current.CanAccept(seg); err != nil {
		return schedule.Shift{}, err
	}
	payload := current.Clone()
	payload.Segments = append(payload.Segments, seg)
	return s.backend.UpdateShift(ctx, *payload)
}

// recoverMove is the shared failure tail of the saga: 404 means another
// actor won, so replace local state wholesale; everything else rolls
// back to the snapshot and surfaces the failure.
func (s *Service) recoverMove(ctx context.Context, snap schedule.BoardSnapshot, op string, err error) (*MoveResult, error) {
	if isNotFound(err) {
		if refetchErr := s.refetchShifts(ctx); refetchErr != nil {
			// Recovery itself failed; fall back to the snapshot.
			s.board.Restore(snap)
			return nil, fmt.Errorf("%s: %w (refetch also failed: %v)", op, err, refetchErr)
		}
		s.log.Info().Str("op", op).Msg("record gone; view refetched and replaced")
		return &MoveResult{Outcome: OutcomeRefetched, Warning: "planning was changed by another user"}, nil
	}

	s.board.Restore(snap)
	s.log.Warn().Err(err).Str("op", op).Msg("move rolled back")
	return nil, fmt.Errorf("%s: %w", op, err)
}

func (s *Service) refetchShifts(ctx context.Context) error {
	shifts, err := s.backend.ListShifts(ctx, backend.ShiftQuery{})
	if err != nil {
		return err
	}
	s.board.ReplaceAll(shifts)
	return nil
}

func isNotFound(err error) bool { return errors.Is(err, schedule.ErrNotFound) }
