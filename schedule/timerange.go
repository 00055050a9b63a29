/*
timerange.go - Wall-clock time ranges and overlap detection

PURPOSE:
  Represents a planned work interval as minutes-since-midnight and decides
  whether two intervals on the same day share any wall-clock minute.
  Night shifts (end at or before start) wrap into the next day.

OVERLAP STRATEGY:
  Both ranges are projected onto a doubled 0-2879 minute timeline before a
  single half-open interval intersection test. A night-spanning range
  [22:00, 02:00) becomes [1320, 1560). Because either range may be the one
  that wraps, the test is repeated with each side shifted by one day.
  This removes per-direction special cases and makes the test symmetric:
  Overlaps(a, b) == Overlaps(b, a) for every pair.

BOUNDARIES:
  Ranges are half-open. A range ending 17:00 does not overlap a range
  starting 17:00.

SEE ALSO:
  - types.go: Segment embeds a TimeRange
  - errors.go: InvalidSegmentError returned by Validate
*/
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// CLOCK - Minutes since midnight (0..1439)
// =============================================================================

// Clock is a time of day expressed as minutes since midnight.
type Clock int

const (
	// MinutesPerDay is the length of the wall-clock day in minutes.
	MinutesPerDay = 24 * 60
)

// ParseClock parses "HH:MM" into a Clock. Hours must be 00-23, minutes 00-59.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("malformed time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed minute in %q: %w", s, err)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if m < 0 || m > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}
	return Clock(h*60 + m), nil
}

// MustClock parses "HH:MM" and panics on malformed input. Test helper and
// literal-constant convenience only.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether the clock falls within a single day.
func (c Clock) Valid() bool { return c >= 0 && c < MinutesPerDay }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON encodes the clock in its wire form, "HH:MM".
func (c Clock) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON parses the "HH:MM" wire form.
func (c *Clock) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("clock must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// =============================================================================
// TIME RANGE - One contiguous interval of the wall-clock day
// =============================================================================

// TimeRange is a half-open interval [Start, End) of the wall-clock day.
// End at or before Start means the range crosses midnight.
type TimeRange struct {
	Start Clock `json:"start"`
	End   Clock `json:"end"`
}

// NewTimeRange parses both bounds from "HH:MM" strings.
func NewTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: s, End: e}, nil
}

// SpansNight reports whether the range wraps past midnight.
func (r TimeRange) SpansNight() bool { return r.End <= r.Start }

// Duration returns the range length in minutes, accounting for wraparound.
func (r TimeRange) Duration() int {
	d := int(r.End) - int(r.Start)
	if d <= 0 {
		d += MinutesPerDay
	}
	return d
}

// Validate rejects out-of-day bounds and zero-duration ranges.
// Start after End is legal: that is a night shift.
func (r TimeRange) Validate() error {
	if !r.Start.Valid() || !r.End.Valid() {
		return &InvalidSegmentError{Range: r, Reason: "time of day out of range"}
	}
	if r.Start == r.End {
		return &InvalidSegmentError{Range: r, Reason: "zero duration"}
	}
	return nil
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// interval projects the range onto the doubled 0-2879 timeline.
// A night-spanning range occupies [Start, End+1440).
func (r TimeRange) interval() (lo, hi int) {
	lo = int(r.Start)
	hi = int(r.End)
	if r.SpansNight() {
		hi += MinutesPerDay
	}
	return lo, hi
}

// Overlaps reports whether two same-day ranges share any wall-clock minute.
// Symmetric by construction: each side is tested shifted one day forward so
// a wrapped range meets the other day's occupancy of its counterpart.
func Overlaps(a, b TimeRange) bool {
	alo, ahi := a.interval()
	blo, bhi := b.interval()
	return intersects(alo, ahi, blo, bhi) ||
		intersects(alo+MinutesPerDay, ahi+MinutesPerDay, blo, bhi) ||
		intersects(alo, ahi, blo+MinutesPerDay, bhi+MinutesPerDay)
}

// intersects is the half-open interval test: touching bounds do not count.
func intersects(alo, ahi, blo, bhi int) bool {
	return alo < bhi && blo < ahi
}
