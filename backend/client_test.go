package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yamine-coder/gestion-rh-sub000/backend"
	"github.com/Yamine-coder/gestion-rh-sub000/leave"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

func newClient(t *testing.T, handler http.Handler) *backend.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := backend.NewHTTPClient(srv.URL+"/api", zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestHTTPClient_GetShiftRoundTrip(t *testing.T) {
	// GIVEN a server returning a shift with wire-format dates and clocks
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/shifts/sh-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "sh-1",
			"employee_id": "emp-a",
			"date": "2026-03-02",
			"kind": "work",
			"version": 3,
			"segments": [{"range": {"start": "21:00", "end": "05:00"}, "is_extra": true}]
		}`))
	}))

	// WHEN fetching it
	got, err := c.GetShift(context.Background(), "sh-1")

	// THEN every field survives the wire
	require.NoError(t, err)
	assert.Equal(t, "sh-1", got.ID)
	assert.True(t, got.Date.Equal(schedule.NewDate(2026, 3, 2)))
	assert.Equal(t, 3, got.Version)
	require.Len(t, got.Segments, 1)
	assert.Equal(t, "21:00", got.Segments[0].Range.Start.String())
	assert.True(t, got.Segments[0].Range.SpansNight())
	assert.True(t, got.Segments[0].Extra)
}

func TestHTTPClient_ListShiftsQueryParameters(t *testing.T) {
	from := schedule.NewDate(2026, 3, 1)
	to := schedule.NewDate(2026, 3, 7)

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "emp-a", r.URL.Query().Get("employee_id"))
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-03-07", r.URL.Query().Get("to"))
		w.Write([]byte(`[]`))
	}))

	got, err := c.ListShifts(context.Background(), backend.ShiftQuery{
		EmployeeID: "emp-a", From: &from, To: &to,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHTTPClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"missing record", http.StatusNotFound, schedule.ErrNotFound},
		{"stale version", http.StatusConflict, schedule.ErrVersionConflict},
		{"bad request", http.StatusBadRequest, schedule.ErrBackendUnavailable},
		{"server error", http.StatusBadGateway, schedule.ErrBackendUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"error": tt.name})
			}))

			_, err := c.GetShift(context.Background(), "sh-1")
			require.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestHTTPClient_ConflictCarriesShiftID(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error": "version mismatch"}`))
	}))

	_, err := c.UpdateShift(context.Background(), schedule.Shift{ID: "sh-9", Version: 4})

	var conflict *schedule.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "sh-9", conflict.ShiftID)
}

func TestHTTPClient_TransportFailureIsBackendError(t *testing.T) {
	c, err := backend.NewHTTPClient("http://127.0.0.1:1/api", zerolog.Nop())
	require.NoError(t, err)

	_, err = c.GetShift(context.Background(), "sh-1")
	require.ErrorIs(t, err, schedule.ErrBackendUnavailable)
}

func TestHTTPClient_LeaveStatusCanonicalizedAtBoundary(t *testing.T) {
	// GIVEN leaves whose statuses come back in assorted spellings
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leaves", r.URL.Path)
		w.Write([]byte(`[
			{"id": "lv-1", "employee_id": "emp-a", "date_start": "2026-03-02", "date_end": "2026-03-04", "status": "Approuvé"},
			{"id": "lv-2", "employee_id": "emp-b", "date_start": "2026-03-02", "date_end": "2026-03-02", "status": "en attente"},
			{"id": "lv-3", "employee_id": "emp-c", "date_start": "2026-03-02", "date_end": "2026-03-02", "status": "REFUSE"}
		]`))
	}))

	got, err := c.ListLeaves(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, leave.StatusApproved, got[0].Status)
	assert.Equal(t, leave.StatusPending, got[1].Status)
	assert.Equal(t, leave.StatusRefused, got[2].Status)
}

func TestHTTPClient_TreatAnomaly(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/anomalies/an-7/treat", r.URL.Path)

		var req backend.TreatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, backend.TreatValidate, req.Action)

		json.NewEncoder(w).Encode(backend.AnomalyState{ID: "an-7", Status: req.Action.StatusFor()})
	}))

	state, err := c.TreatAnomaly(context.Background(), "an-7", backend.TreatRequest{Action: backend.TreatValidate})

	require.NoError(t, err)
	assert.Equal(t, "an-7", state.ID)
	assert.Equal(t, backend.TreatValidate.StatusFor(), state.Status)
}
