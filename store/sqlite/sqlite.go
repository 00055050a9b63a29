/*
Package sqlite provides the SQLite-backed reconcile.Store.

PURPOSE:
  Treated-anomaly overrides must survive a process restart: a manager who
  validates an anomaly and reloads the session must not see it flip back
  to pending while the server catches up. This package persists the
  override map to a local SQLite file.

SCHEMA:
  reconcile_overrides: one row per treated anomaly, replaced on re-treat.
  Expiry is enforced by the cache's TTL sweep, not here; the store keeps
  whatever it is told until Delete.

WAL MODE:
  The database is opened with WAL so the periodic variance refresher's
  reads never block a treat action's write.

USAGE:
  store, err := sqlite.New("./data/planning.db")
  if err != nil {
      log.Fatal().Err(err).Msg("open store")
  }
  defer store.Close()

  cache, err := reconcile.NewCache(ctx, store, reconcile.DefaultTTL, logger)

SEE ALSO:
  - reconcile/cache.go: TTL semantics and the reconcile pass
  - reconcile/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Yamine-coder/gestion-rh-sub000/reconcile"
	"github.com/Yamine-coder/gestion-rh-sub000/variance"
)

// Store implements reconcile.Store on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database at path. Use ":memory:" for an
// in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reconcile_overrides (
		anomaly_id   TEXT PRIMARY KEY,
		status       TEXT NOT NULL,
		employee_id  TEXT NOT NULL,
		day          TEXT NOT NULL,
		kind         TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	);

	-- For the heuristic (employee, day, kind) adoption lookup
	CREATE INDEX IF NOT EXISTS idx_overrides_cell
		ON reconcile_overrides(employee_id, day, kind);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put inserts or replaces one override row.
func (s *Store) Put(ctx context.Context, o reconcile.Override) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reconcile_overrides
			(anomaly_id, status, employee_id, day, kind, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		o.AnomalyID, string(o.Status), o.EmployeeID, o.Day, string(o.Kind),
		o.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to persist override %s: %w", o.AnomalyID, err)
	}
	return nil
}

// Delete drops one override row. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, anomalyID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM reconcile_overrides WHERE anomaly_id = ?`, anomalyID)
	if err != nil {
		return fmt.Errorf("failed to delete override %s: %w", anomalyID, err)
	}
	return nil
}

// All returns every persisted override.
func (s *Store) All(ctx context.Context) ([]reconcile.Override, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT anomaly_id, status, employee_id, day, kind, updated_at
		FROM reconcile_overrides`)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	defer rows.Close()

	var out []reconcile.Override
	for rows.Next() {
		var o reconcile.Override
		var status, kind, updatedAt string
		if err := rows.Scan(&o.AnomalyID, &status, &o.EmployeeID, &o.Day, &kind, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		o.Status = variance.Status(status)
		o.Kind = variance.Kind(kind)
		t, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, fmt.Errorf("malformed updated_at for %s: %w", o.AnomalyID, err)
		}
		o.UpdatedAt = t
		out = append(out, o)
	}
	return out, rows.Err()
}
