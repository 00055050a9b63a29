package anomaly_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamine-coder/gestion-rh-sub000/anomaly"
	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/reconcile"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

type fixture struct {
	mem   *backend.Memory
	board *schedule.Board
	svc   *anomaly.Service
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mem:   backend.NewMemory(),
		board: schedule.NewBoard(),
		now:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	cache, err := reconcile.NewCache(context.Background(), reconcile.NewMemoryStore(),
		reconcile.DefaultTTL, zerolog.Nop(), reconcile.WithClock(func() time.Time { return f.now }))
	require.NoError(t, err)

	f.svc = anomaly.New(f.mem, f.board, variance.NewClassifier(variance.DefaultThresholds()),
		cache, zerolog.Nop(),
		anomaly.WithToday(func() schedule.Date { return schedule.NewDate(2026, 3, 2) }))
	return f
}

func clock(t *testing.T, s string) *schedule.Clock {
	t.Helper()
	c, err := schedule.ParseClock(s)
	require.NoError(t, err)
	return &c
}

func plan(t *testing.T, f *fixture, employeeID string, day schedule.Date, start, end string) {
	t.Helper()
	r, err := schedule.NewTimeRange(start, end)
	require.NoError(t, err)
	f.board.Put(&schedule.Shift{
		ID: "sh-" + employeeID, EmployeeID: employeeID, Date: day,
		Kind: schedule.ShiftWork, Segments: []schedule.Segment{{Range: r}},
	})
}

func TestVariances_LinksServerAnomalyOnMatchingSegment(t *testing.T) {
	// GIVEN a planned 09:00-17:00 day, a 09:20 arrival and a server
	// anomaly already covering that late arrival
	f := newFixture(t)
	day := schedule.NewDate(2026, 3, 2)
	plan(t, f, "emp-a", day, "09:00", "17:00")
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{
		EmployeeID: "emp-a", Date: day,
		Actuals:   []variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:20"), Departure: clock(t, "17:00")}},
		Anomalies: []backend.AnomalyRef{{ID: "an-1", SegmentIndex: 0, Kind: variance.KindLate, Status: variance.StatusPending}},
	}})

	// WHEN listing variances
	recs, err := f.svc.Variances(context.Background(), "emp-a", day, day)

	// THEN the late record carries the server id and status
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, variance.KindLate, recs[0].Kind)
	assert.Equal(t, "an-1", recs[0].AnomalyID)
	assert.Equal(t, variance.StatusPending, recs[0].Status)
	assert.Equal(t, 20, recs[0].Minutes)
}

func TestVariances_PlannedAbsenceWithCaptureIsUnscheduledPresence(t *testing.T) {
	f := newFixture(t)
	day := schedule.NewDate(2026, 3, 2)
	f.board.Put(&schedule.Shift{
		ID: "sh-a", EmployeeID: "emp-a", Date: day,
		Kind: schedule.ShiftAbsence, Reason: "maladie",
	})
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{
		EmployeeID: "emp-a", Date: day,
		Actuals: []variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, "12:00")}},
	}})

	recs, err := f.svc.Variances(context.Background(), "emp-a", day, day)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, variance.KindUnscheduledPresence, recs[0].Kind)
	assert.True(t, recs[0].NeedsAdmin)
}

func TestVariances_FutureDaysProduceNothing(t *testing.T) {
	f := newFixture(t)
	tomorrow := schedule.NewDate(2026, 3, 3)
	plan(t, f, "emp-a", tomorrow, "09:00", "17:00")
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{EmployeeID: "emp-a", Date: tomorrow}})

	recs, err := f.svc.Variances(context.Background(), "emp-a", tomorrow, tomorrow)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTreat_OverrideShadowsStaleServerStatusUntilTTL(t *testing.T) {
	// GIVEN a pending late anomaly the manager validates, while the
	// server keeps serving the stale pending status
	f := newFixture(t)
	day := schedule.NewDate(2026, 3, 2)
	plan(t, f, "emp-a", day, "09:00", "17:00")
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{
		EmployeeID: "emp-a", Date: day,
		Actuals:   []variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:20"), Departure: clock(t, "17:00")}},
		Anomalies: []backend.AnomalyRef{{ID: "an-42", SegmentIndex: 0, Kind: variance.KindLate, Status: variance.StatusPending}},
	}})

	recs, err := f.svc.Variances(context.Background(), "emp-a", day, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// WHEN treating it
	state, err := f.svc.Treat(context.Background(), recs[0], backend.TreatRequest{Action: backend.TreatValidate})
	require.NoError(t, err)
	assert.Equal(t, variance.StatusValidated, state.Status)

	// THEN within the TTL the list shows the decision
	recs, err = f.svc.Variances(context.Background(), "emp-a", day, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, variance.StatusValidated, recs[0].Status)

	// AND past the TTL the server's status is authoritative again
	f.now = f.now.Add(31 * time.Minute)
	recs, err = f.svc.Variances(context.Background(), "emp-a", day, day)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, variance.StatusPending, recs[0].Status)
}

func TestTreat_RejectsUnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Treat(context.Background(),
		variance.Record{AnomalyID: "an-1"}, backend.TreatRequest{Action: "archive"})
	require.Error(t, err)
	assert.Zero(t, f.mem.Calls("TreatAnomaly"))
}

func TestSummary_TotalsPlannedAndWorkedHours(t *testing.T) {
	// GIVEN an 8h planned day worked 09:00-17:30
	f := newFixture(t)
	day := schedule.NewDate(2026, 3, 2)
	plan(t, f, "emp-a", day, "09:00", "17:00")
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{
		EmployeeID: "emp-a", Date: day,
		Actuals: []variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, "17:30")}},
	}})

	got, err := f.svc.Summary(context.Background(), "emp-a", day, day)

	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "8", got.PlannedHours.String())
	assert.Equal(t, "8.5", got.WorkedHours.String())
	assert.Equal(t, "0.5", got.VarianceHours.String())
}

func TestSummary_OpenActualCountsNothing(t *testing.T) {
	f := newFixture(t)
	day := schedule.NewDate(2026, 3, 2)
	plan(t, f, "emp-a", day, "09:00", "17:00")
	f.mem.SeedAttendance("emp-a", []backend.AttendanceDay{{
		EmployeeID: "emp-a", Date: day,
		Actuals: []variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:00")}},
	}})

	got, err := f.svc.Summary(context.Background(), "emp-a", day, day)

	require.NoError(t, err)
	assert.True(t, got.WorkedHours.IsZero())
	assert.Equal(t, "-8", got.VarianceHours.String())
}
