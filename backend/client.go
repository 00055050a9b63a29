/*
client.go - HTTP implementation of the backend collaborator

WIRE SURFACE (paths relative to the configured base URL):
  GET    /shifts?employee_id=&from=&to=   -> Shift[]
  GET    /shifts/{id}                     -> Shift
  POST   /shifts                          -> Shift (201, id assigned, version 0)
  PUT    /shifts/{id}                     -> Shift | 409 | 404
  DELETE /shifts/{id}                     -> 204 | 404
  GET    /leaves                          -> Leave[] (raw statuses)
  GET    /comparison?employee_id=&from=&to= -> AttendanceDay[]
  PUT    /anomalies/{id}/treat            -> AnomalyState

Leave statuses arrive in whatever spelling the leave subsystem emits and
are canonicalized here, at the boundary, so the rest of the engine only
ever sees the enum.
*/
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yamine-coder/gestion-rh-sub000/leave"
	"github.com/Yamine-coder/gestion-rh-sub000/schedule"
)

// HTTPClient talks to the authoritative scheduling server.
type HTTPClient struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "https://backend.example.com/api".
func NewHTTPClient(baseURL string, log zerolog.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("malformed backend URL %q: %w", baseURL, err)
	}
	return &HTTPClient{
		base: u,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  log.With().Str("component", "backend").Logger(),
	}, nil
}

// =============================================================================
// SHIFTS
// =============================================================================

func (c *HTTPClient) ListShifts(ctx context.Context, q ShiftQuery) ([]schedule.Shift, error) {
	values := url.Values{}
	if q.EmployeeID != "" {
		values.Set("employee_id", q.EmployeeID)
	}
	if q.From != nil {
		values.Set("from", q.From.String())
	}
	if q.To != nil {
		values.Set("to", q.To.String())
	}

	var shifts []schedule.Shift
	if err := c.do(ctx, http.MethodGet, c.endpoint("shifts", values), "", nil, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (c *HTTPClient) GetShift(ctx context.Context, id string) (schedule.Shift, error) {
	var s schedule.Shift
	err := c.do(ctx, http.MethodGet, c.endpoint("shifts/"+url.PathEscape(id), nil), id, nil, &s)
	return s, err
}

func (c *HTTPClient) CreateShift(ctx context.Context, s schedule.Shift) (schedule.Shift, error) {
	var created schedule.Shift
	err := c.do(ctx, http.MethodPost, c.endpoint("shifts", nil), "", s, &created)
	return created, err
}

func (c *HTTPClient) UpdateShift(ctx context.Context, s schedule.Shift) (schedule.Shift, error) {
	var updated schedule.Shift
	err := c.do(ctx, http.MethodPut, c.endpoint("shifts/"+url.PathEscape(s.ID), nil), s.ID, s, &updated)
	return updated, err
}

func (c *HTTPClient) DeleteShift(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("shifts/"+url.PathEscape(id), nil), id, nil, nil)
}

// =============================================================================
// LEAVES
// =============================================================================

// leaveDTO is the wire form; Status arrives in uncanonicalized spellings.
type leaveDTO struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	DateStart  schedule.Date `json:"date_start"`
	DateEnd    schedule.Date `json:"date_end"`
	Status     string        `json:"status"`
	Type       string        `json:"type"`
}

func (c *HTTPClient) ListLeaves(ctx context.Context) ([]leave.Leave, error) {
	var dtos []leaveDTO
	if err := c.do(ctx, http.MethodGet, c.endpoint("leaves", nil), "", nil, &dtos); err != nil {
		return nil, err
	}

	leaves := make([]leave.Leave, len(dtos))
	for i, d := range dtos {
		leaves[i] = leave.Leave{
			ID:         d.ID,
			EmployeeID: d.EmployeeID,
			DateStart:  d.DateStart,
			DateEnd:    d.DateEnd,
			Status:     leave.ParseStatus(d.Status),
			Type:       d.Type,
		}
	}
	return leaves, nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (c *HTTPClient) Comparison(ctx context.Context, employeeID string, from, to schedule.Date) ([]AttendanceDay, error) {
	values := url.Values{}
	values.Set("employee_id", employeeID)
	values.Set("from", from.String())
	values.Set("to", to.String())

	var days []AttendanceDay
	if err := c.do(ctx, http.MethodGet, c.endpoint("comparison", values), "", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *HTTPClient) TreatAnomaly(ctx context.Context, id string, req TreatRequest) (AnomalyState, error) {
	var state AnomalyState
	err := c.do(ctx, http.MethodPut, c.endpoint("anomalies/"+url.PathEscape(id)+"/treat", nil), id, req, &state)
	return state, err
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *HTTPClient) endpoint(path string, values url.Values) string {
	u := *c.base
	u.Path, _ = url.JoinPath(u.Path, path)
	if values != nil {
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// do performs one request. id names the resource targeted by the call,
// empty for collection endpoints; error mapping uses it because the
// server's error envelope does not echo the id back.
func (c *HTTPClient) do(ctx context.Context, method, endpoint, id string, body, out any) error {
	op := method + " " + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &schedule.BackendError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
		return nil
	}

	return c.mapError(op, id, resp)
}

// mapError folds non-2xx responses into the shared error taxonomy.
func (c *HTTPClient) mapError(op, id string, resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return &schedule.NotFoundError{Kind: "resource", ID: id}
	case http.StatusConflict:
		return &schedule.VersionConflictError{ShiftID: id}
	default:
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).
			Str("error", body.Error).Msg("backend request failed")
		err := fmt.Errorf("%s", body.Error)
		if body.Error == "" {
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		return &schedule.BackendError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
}
