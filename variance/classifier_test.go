package variance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

func clock(t *testing.T, s string) *schedule.Clock {
	t.Helper()
	c, err := schedule.ParseClock(s)
	require.NoError(t, err)
	return &c
}

func seg(t *testing.T, start, end string) schedule.Segment {
	t.Helper()
	r, err := schedule.NewTimeRange(start, end)
	require.NoError(t, err)
	return schedule.Segment{Range: r}
}

func dayInput(t *testing.T, planned []schedule.Segment, actuals []variance.Actual) variance.DayInput {
	t.Helper()
	today := schedule.NewDate(2026, time.May, 20)
	return variance.DayInput{
		EmployeeID: "emp-1",
		Date:       today.AddDays(-1),
		Today:      today,
		Planned:    planned,
		Actuals:    actuals,
	}
}

func newClassifier() *variance.Classifier {
	return variance.NewClassifier(variance.DefaultThresholds())
}

// =============================================================================
// GUARDS
// =============================================================================

func TestClassifyDay_FutureDateNeverClassified(t *testing.T) {
	in := dayInput(t, []schedule.Segment{seg(t, "09:00", "17:00")}, nil)
	in.Date = in.Today.AddDays(1)

	assert.Nil(t, newClassifier().ClassifyDay(in))
}

func TestClassifyDay_MissingRecordIsAbsence(t *testing.T) {
	// Planned 09:00-17:00 on a past date, nothing captured: exactly one
	// critical absence.
	in := dayInput(t, []schedule.Segment{seg(t, "09:00", "17:00")}, nil)

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindAbsence, got[0].Kind)
	assert.Equal(t, variance.GravenessCritical, got[0].Graveness)
	assert.Equal(t, variance.StatusPending, got[0].Status)
	assert.Equal(t, 480, got[0].Minutes)
}

func TestClassifyDay_OnTimeEmitsNothing(t *testing.T) {
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:03"), Departure: clock(t, "16:57")}},
	)

	assert.Empty(t, newClassifier().ClassifyDay(in))
}

// =============================================================================
// ARRIVAL BANDS
// =============================================================================

func TestClassifyDay_LateArrivalWithinDepartureTolerance(t *testing.T) {
	// Arrival 20 minutes late, departure 5 minutes over: one late record,
	// no departure variance.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:20"), Departure: clock(t, "17:05")}},
	)

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindLate, got[0].Kind)
	assert.Equal(t, 20, got[0].Minutes)
}

func TestClassifyDay_RecaptureSupersedesEarlierEntry(t *testing.T) {
	// Two captures for the same segment: the later one, on time, is the
	// one classified. The earlier late clock-in is discarded.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{
			{SegmentIndex: 0, Arrival: clock(t, "09:30"), Departure: clock(t, "17:00")},
			{SegmentIndex: 0, Arrival: clock(t, "09:02"), Departure: clock(t, "16:58")},
		},
	)

	assert.Empty(t, newClassifier().ClassifyDay(in))
}

func TestClassifyDay_LateTiers(t *testing.T) {
	tests := []struct {
		arrival   string
		kind      variance.Kind
		graveness variance.Graveness
		admin     bool
	}{
		{"09:10", variance.KindLate, variance.GravenessAttention, false},
		{"09:30", variance.KindLate, variance.GravenessCritical, false},
		{"10:30", variance.KindOutOfRangeIn, variance.GravenessCritical, true},
	}

	for _, tt := range tests {
		in := dayInput(t,
			[]schedule.Segment{seg(t, "09:00", "17:00")},
			[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, tt.arrival), Departure: clock(t, "17:00")}},
		)
		got := newClassifier().ClassifyDay(in)
		require.Len(t, got, 1, "arrival %s", tt.arrival)
		assert.Equal(t, tt.kind, got[0].Kind, "arrival %s", tt.arrival)
		assert.Equal(t, tt.graveness, got[0].Graveness, "arrival %s", tt.arrival)
		assert.Equal(t, tt.admin, got[0].NeedsAdmin, "arrival %s", tt.arrival)
	}
}

func TestClassifyDay_TooEarlyArrivalIsOutOfRange(t *testing.T) {
	// Three hours early is outside the permitted early-arrival band.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "06:00"), Departure: clock(t, "17:00")}},
	)

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindOutOfRangeIn, got[0].Kind)
	assert.True(t, got[0].NeedsAdmin)
	assert.Equal(t, 180, got[0].Minutes)
}

func TestClassifyDay_NightShiftArrivalAroundMidnight(t *testing.T) {
	// Planned 00:00 start, clocked in 23:55 the evening before: 5 minutes
	// early, on time; not 1435 minutes late.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "00:00", "08:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "23:55"), Departure: clock(t, "08:00")}},
	)

	assert.Empty(t, newClassifier().ClassifyDay(in))
}

// =============================================================================
// DEPARTURE BANDS
// =============================================================================

func TestClassifyDay_EarlyDepartureTiers(t *testing.T) {
	tests := []struct {
		departure string
		graveness variance.Graveness
	}{
		{"16:50", variance.GravenessAttention},
		{"16:30", variance.GravenessCritical},
	}

	for _, tt := range tests {
		in := dayInput(t,
			[]schedule.Segment{seg(t, "09:00", "17:00")},
			[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, tt.departure)}},
		)
		got := newClassifier().ClassifyDay(in)
		require.Len(t, got, 1, "departure %s", tt.departure)
		assert.Equal(t, variance.KindEarlyDeparture, got[0].Kind)
		assert.Equal(t, tt.graveness, got[0].Graveness, "departure %s", tt.departure)
	}
}

func TestClassifyDay_OvertimeAutoValidation(t *testing.T) {
	// 20 minutes over: auto-validated. 45 minutes over: admin required.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, "17:20")}},
	)
	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindOvertime, got[0].Kind)
	assert.True(t, got[0].AutoValidated)
	assert.Equal(t, variance.StatusValidated, got[0].Status)
	assert.False(t, got[0].NeedsAdmin)

	in.Actuals[0].Departure = clock(t, "17:45")
	got = newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindOvertime, got[0].Kind)
	assert.False(t, got[0].AutoValidated)
	assert.True(t, got[0].NeedsAdmin)
	assert.Equal(t, 45, got[0].Minutes)
}

func TestClassifyDay_MinorKindsCoOccur(t *testing.T) {
	// Late arrival and overtime departure on the same segment.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "17:00")},
		[]variance.Actual{{SegmentIndex: 0, Arrival: clock(t, "09:12"), Departure: clock(t, "17:50")}},
	)

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 2)
	assert.Equal(t, variance.KindLate, got[0].Kind)
	assert.Equal(t, 12, got[0].Minutes)
	assert.Equal(t, variance.KindOvertime, got[1].Kind)
	assert.Equal(t, 50, got[1].Minutes)
}

// =============================================================================
// UNSCHEDULED PRESENCE
// =============================================================================

func TestClassifyDay_PresenceOnAbsenceDay(t *testing.T) {
	in := dayInput(t, nil, []variance.Actual{
		{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, "12:00")},
	})
	in.PlannedAbsence = true

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindUnscheduledPresence, got[0].Kind)
	assert.True(t, got[0].NeedsAdmin)
	assert.Equal(t, 180, got[0].Minutes)
}

func TestClassifyDay_PresenceOnRestDay(t *testing.T) {
	// No shift at all that day.
	in := dayInput(t, nil, []variance.Actual{
		{SegmentIndex: 0, Arrival: clock(t, "10:00"), Departure: clock(t, "15:00")},
	})

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindUnscheduled, got[0].Kind)
	assert.True(t, got[0].NeedsAdmin)
}

func TestClassifyDay_ExtraCaptureOnWorkedDay(t *testing.T) {
	// One planned segment worked fine plus a second capture nobody planned.
	in := dayInput(t,
		[]schedule.Segment{seg(t, "09:00", "12:00")},
		[]variance.Actual{
			{SegmentIndex: 0, Arrival: clock(t, "09:00"), Departure: clock(t, "12:00")},
			{SegmentIndex: 1, Arrival: clock(t, "14:00"), Departure: clock(t, "16:00")},
		},
	)

	got := newClassifier().ClassifyDay(in)
	require.Len(t, got, 1)
	assert.Equal(t, variance.KindUnscheduled, got[0].Kind)
	assert.Equal(t, 1, got[0].SegmentIndex)
}
