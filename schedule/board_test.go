package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

func workShift(t *testing.T, id, employeeID string, date schedule.Date, ranges ...string) *schedule.Shift {
	t.Helper()
	s := &schedule.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Date:       date,
		Kind:       schedule.ShiftWork,
		Version:    1,
	}
	require.Zero(t, len(ranges)%2, "ranges come in start/end pairs")
	for i := 0; i < len(ranges); i += 2 {
		s.Segments = append(s.Segments, schedule.Segment{Range: tr(t, ranges[i], ranges[i+1])})
	}
	return s
}

func TestBoard_PutGetIsolation(t *testing.T) {
	board := schedule.NewBoard()
	date := schedule.NewDate(2026, time.March, 2)
	shift := workShift(t, "s1", "emp-1", date, "09:00", "17:00")

	board.Put(shift)

	// Mutating the original or a returned copy must not leak into the board.
	shift.Segments[0].Comment = "mutated"
	got := board.Get(schedule.NewCellKey("emp-1", date))
	require.NotNil(t, got)
	assert.Empty(t, got.Segments[0].Comment)

	got.Segments[0].Comment = "also mutated"
	again := board.Get(schedule.NewCellKey("emp-1", date))
	assert.Empty(t, again.Segments[0].Comment)
}

func TestBoard_SnapshotRestore(t *testing.T) {
	board := schedule.NewBoard()
	monday := schedule.NewDate(2026, time.March, 2)
	tuesday := monday.AddDays(1)

	board.Put(workShift(t, "s1", "emp-1", monday, "09:00", "17:00"))
	board.Put(workShift(t, "s2", "emp-2", monday, "22:00", "06:00"))

	snap := board.Snapshot()

	// Mutate the board after the snapshot.
	board.Remove(schedule.NewCellKey("emp-1", monday))
	board.Put(workShift(t, "s3", "emp-1", tuesday, "10:00", "14:00"))

	board.Restore(snap)

	all := board.All()
	require.Len(t, all, 2)
	assert.Equal(t, "s1", all[0].ID)
	assert.Equal(t, "s2", all[1].ID)
	assert.Nil(t, board.Get(schedule.NewCellKey("emp-1", tuesday)))
}

func TestBoard_ReplaceAll(t *testing.T) {
	board := schedule.NewBoard()
	monday := schedule.NewDate(2026, time.March, 2)
	board.Put(workShift(t, "local", "emp-1", monday, "09:00", "12:00"))

	// Server truth wins wholesale, no merging.
	server := []schedule.Shift{
		*workShift(t, "srv-1", "emp-1", monday, "08:00", "16:00"),
		*workShift(t, "srv-2", "emp-3", monday, "12:00", "20:00"),
	}
	board.ReplaceAll(server)

	all := board.All()
	require.Len(t, all, 2)
	assert.Equal(t, "srv-1", all[0].ID)
	assert.Nil(t, board.GetByID("local"))
}

func TestBoard_ForEmployeeRange(t *testing.T) {
	board := schedule.NewBoard()
	start := schedule.NewDate(2026, time.March, 2)
	for i := 0; i < 5; i++ {
		board.Put(workShift(t, "s"+string(rune('a'+i)), "emp-1", start.AddDays(i), "09:00", "17:00"))
	}
	board.Put(workShift(t, "other", "emp-2", start, "09:00", "17:00"))

	got := board.ForEmployee("emp-1", start.AddDays(1), start.AddDays(3))
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date), "sorted by date")
	}
}
