/*
Package leave provides leave records and the scheduling interaction policy.

PURPOSE:
  Leave requests are owned by an external subsystem; this package reads
  them and decides how they constrain scheduling. The one policy here is
  evaluated by EVERY entry point that writes a segment into a cell
  (manual edit, quick-create, drag-drop target). Checking it on only some
  paths is the defect class this package exists to eliminate.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: canonical approved/pending/refused enum
  - ParseStatus: boundary parser collapsing the several spellings seen
    in upstream payloads into one canonical value
  - Leave: an absence request spanning an inclusive date range
  - Index: per-employee coverage lookup

SEE ALSO:
  - policy.go: The block/warn/allow decision
*/
package leave

import (
	"strings"

	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// =============================================================================
// STATUS - Canonical enum, parsed once at the boundary
// =============================================================================

type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRefused  Status = "refused"
	StatusUnknown  Status = "unknown"
)

// statusSpellings maps the payload variants observed upstream onto
// canonical values. Comparison happens here, once, and nowhere else.
var statusSpellings = map[string]Status{
	"approved":   StatusApproved,
	"approuve":   StatusApproved,
	"approuvee":  StatusApproved,
	"validee":    StatusApproved,
	"valide":     StatusApproved,
	"accepted":   StatusApproved,
	"pending":    StatusPending,
	"attente":    StatusPending,
	"en attente": StatusPending,
	"refused":    StatusRefused,
	"refuse":     StatusRefused,
	"refusee":    StatusRefused,
	"rejected":   StatusRefused,
	"rejete":     StatusRefused,
}

// ParseStatus canonicalizes a raw status string. Case, surrounding space
// and the common accented byte variants are all collapsed.
func ParseStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = stripAccents(s)
	if canonical, ok := statusSpellings[s]; ok {
		return canonical
	}
	return StatusUnknown
}

// stripAccents folds the accented characters that appear in upstream
// status spellings. Not a general transliterator on purpose.
func stripAccents(s string) string {
	replacer := strings.NewReplacer(
		"é", "e", // é
		"è", "e", // è
		"ê", "e", // ê
		"à", "a", // à
	)
	return replacer.Replace(s)
}

// =============================================================================
// LEAVE - One absence request
// =============================================================================

// Leave is an absence request spanning [DateStart, DateEnd], inclusive.
// Read-only input to the planning core.
type Leave struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	DateStart  schedule.Date `json:"date_start"`
	DateEnd    schedule.Date `json:"date_end"`
	Status     Status        `json:"status"`
	Type       string        `json:"type"`
}

// Covers reports whether the leave's range contains the given day.
func (l Leave) Covers(d schedule.Date) bool {
	return d.AfterOrEqual(l.DateStart) && d.BeforeOrEqual(l.DateEnd)
}

// =============================================================================
// INDEX - Coverage lookup
// =============================================================================

// Index answers "which leave covers this (employee, day)" lookups.
// Rebuilt wholesale on every leave fetch.
type Index struct {
	byEmployee map[string][]Leave
}

func NewIndex(leaves []Leave) *Index {
	idx := &Index{byEmployee: make(map[string][]Leave)}
	for _, l := range leaves {
		idx.byEmployee[l.EmployeeID] = append(idx.byEmployee[l.EmployeeID], l)
	}
	return idx
}

// CoverFor returns the leave covering the cell, or nil. When several
// leaves cover the same day, the most restrictive status wins:
// approved over pending over refused.
func (idx *Index) CoverFor(employeeID string, date schedule.Date) *Leave {
	var best *Leave
	for i := range idx.byEmployee[employeeID] {
		l := idx.byEmployee[employeeID][i]
		if !l.Covers(date) {
			continue
		}
		if best == nil || statusRank(l.Status) > statusRank(best.Status) {
			best = &l
		}
	}
	return best
}

func statusRank(s Status) int {
	switch s {
	case StatusApproved:
		return 3
	case StatusPending:
		return 2
	case StatusRefused:
		return 1
	default:
		return 0
	}
}
