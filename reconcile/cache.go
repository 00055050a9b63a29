/*
Package reconcile keeps just-treated anomalies from visually reverting.

PURPOSE:
  When a manager validates, refuses or corrects an anomaly, the server
  acknowledges the write but subsequent reads can still serve the stale
  pending status for a while. This package is the local override store
  bridging that gap: every treat action writes an entry, and every
  freshly fetched variance batch is reconciled against the entries
  before presentation. Entries expire after a fixed TTL; past it, server
  state is authoritative again.

LIFECYCLE:
  Built at session start from the durable store (overrides survive a
  process restart), swept for expired entries on every reconcile pass,
  torn down with the session. Passed by handle to consumers; no ambient
  package-level state.

SEE ALSO:
  - ../store/sqlite: durable Store implementation
  - memory.go: in-memory Store for tests
*/
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

// DefaultTTL is how long a local override outlives the treat action.
const DefaultTTL = 30 * time.Minute

// =============================================================================
// OVERRIDE - One locally treated anomaly
// =============================================================================

// Override records the status a treat action produced, plus the
// (employee, day, kind) triple used for best-effort id adoption.
type Override struct {
	AnomalyID  string
	Status     variance.Status
	EmployeeID string
	Day        string
	Kind       variance.Kind
	UpdatedAt  time.Time
}

// Store persists overrides. Implementations: sqlite (durable), memory (tests).
type Store interface {
	Put(ctx context.Context, o Override) error
	Delete(ctx context.Context, anomalyID string) error
	All(ctx context.Context) ([]Override, error)
}

// =============================================================================
// CACHE
// =============================================================================

// Cache is the process-wide override map, write-through to its Store.
type Cache struct {
	ttl   time.Duration
	store Store
	now   func() time.Time
	log   zerolog.Logger

	mu      sync.Mutex
	entries map[string]Override
}

// Option tweaks cache construction.
type Option func(*Cache)

// WithClock injects the time source. Tests use it to cross the TTL.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache loads existing overrides from the store so a reload does not
// lose in-flight treatments.
func NewCache(ctx context.Context, store Store, ttl time.Duration, log zerolog.Logger, opts ...Option) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		store:   store,
		now:     time.Now,
		log:     log.With().Str("component", "reconcile").Logger(),
		entries: make(map[string]Override),
	}
	for _, opt := range opts {
		opt(c)
	}

	existing, err := store.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range existing {
		c.entries[o.AnomalyID] = o
	}
	return c, nil
}

// Record stores the override for a just-treated anomaly, write-through to
// the durable store. The record's id must already be known.
func (c *Cache) Record(ctx context.Context, rec variance.Record, status variance.Status) error {
	o := Override{
		AnomalyID:  rec.AnomalyID,
		Status:     status,
		EmployeeID: rec.EmployeeID,
		Day:        rec.Date.String(),
		Kind:       rec.Kind,
		UpdatedAt:  c.now(),
	}
	if err := c.store.Put(ctx, o); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[o.AnomalyID] = o
	c.mu.Unlock()

	c.log.Debug().Str("anomaly", o.AnomalyID).Str("status", string(status)).Msg("override recorded")
	return nil
}

// Lookup returns the live override for an anomaly id, if any.
func (c *Cache) Lookup(id string) (Override, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, ok := c.entries[id]
	if !ok || c.expired(o) {
		return Override{}, false
	}
	return o, true
}

// Reconcile applies live overrides to a freshly fetched batch, expiring
// stale entries as it goes. Cache wins over a possibly-stale read unless
// the statuses already agree. Records without an anomaly id adopt a
// cached id when exactly one treated entry matches their
// (employee, day, kind) triple; ambiguous matches adopt nothing.
func (c *Cache) Reconcile(ctx context.Context, recs []variance.Record) []variance.Record {
	c.mu.Lock()
	c.sweepLocked(ctx)

	out := make([]variance.Record, len(recs))
	copy(out, recs)

	for i := range out {
		if out[i].AnomalyID == "" {
			if o, ok := c.adoptLocked(out[i]); ok {
				out[i].AnomalyID = o.AnomalyID
				out[i].Status = o.Status
			}
			continue
		}
		if o, ok := c.entries[out[i].AnomalyID]; ok && o.Status != out[i].Status {
			out[i].Status = o.Status
		}
	}
	c.mu.Unlock()
	return out
}

// adoptLocked is the best-effort id linking for records the server has
// not yet assigned an anomaly id to.
func (c *Cache) adoptLocked(rec variance.Record) (Override, bool) {
	var match Override
	found := 0
	for _, o := range c.entries {
		if o.EmployeeID == rec.EmployeeID && o.Day == rec.Date.String() && o.Kind == rec.Kind {
			match = o
			found++
		}
	}
	if found != 1 {
		// Two same-kind anomalies on one employee/day (double shift) would
		// mis-link; adopt nothing.
		return Override{}, false
	}
	return match, true
}

func (c *Cache) sweepLocked(ctx context.Context) {
	for id, o := range c.entries {
		if !c.expired(o) {
			continue
		}
		delete(c.entries, id)
		if err := c.store.Delete(ctx, id); err != nil {
			c.log.Warn().Err(err).Str("anomaly", id).Msg("failed to drop expired override")
		}
	}
}

func (c *Cache) expired(o Override) bool {
	return c.now().Sub(o.UpdatedAt) > c.ttl
}
