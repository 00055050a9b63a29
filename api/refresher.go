/*
refresher.go - Background leave and variance resync

PURPOSE:
  Periodically refreshes the inputs the variance views depend on: the
  leave index is re-pulled from the server, and variance listings always
  fetch live attendance anyway. Shift state is deliberately left alone.
  A background tick replacing the board wholesale could land between a
  move's optimistic local apply and its persistence and clobber the
  in-flight edit, so wholesale shift replacement stays on the manual
  /api/refresh path only.

USAGE:
  refresher := NewRefresher(planner, 30*time.Second, logger)
  refresher.Start()
  // ... later
  refresher.Stop()
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Yamine-coder/gestion-rh-sub000/planner"
)

// Refresher drives the periodic resync.
type Refresher struct {
	planner  *planner.Service
	interval time.Duration
	log      zerolog.Logger
	cron     *cron.Cron
}

func NewRefresher(p *planner.Service, interval time.Duration, log zerolog.Logger) *Refresher {
	return &Refresher{
		planner:  p,
		interval: interval,
		log:      log.With().Str("component", "refresher").Logger(),
		cron:     cron.New(),
	}
}

// Start schedules the resync job and runs one immediately.
func (r *Refresher) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, r.tick); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}

	go r.tick()
	r.cron.Start()
	r.log.Info().Str("interval", r.interval.String()).Msg("background refresh started")
	return nil
}

// Stop halts the job and waits for an in-flight tick to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.log.Info().Msg("background refresh stopped")
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	if err := r.planner.RefreshLeaves(ctx); err != nil {
		// The stale view stays usable; the next tick tries again.
		r.log.Warn().Err(err).Msg("background refresh failed")
		return
	}
	r.log.Debug().Msg("leave view refreshed")
}
