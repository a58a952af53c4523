// Package auditlog persists every diagnostics.Record to an append-only
// Postgres table via pgx. It is strictly a write-forward audit trail:
// nothing in this package reads the table back into an fsm.Engine, and
// it exposes no operation resembling "restore state from history" — an
// engine's live state is only ever current and events, never replayed
// from storage.
package auditlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxorio/iotfsm/diagnostics"
	"github.com/fluxorio/iotfsm/internal/corelog"
)

// Schema is the DDL a deployment runs once before pointing a Store at a
// database. It is exported rather than applied automatically: migrating
// the audit schema is an operational decision, not something a running
// engine should do on its own.
const Schema = `
CREATE TABLE IF NOT EXISTS fsm_audit_log (
	id          BIGSERIAL PRIMARY KEY,
	engine_id   TEXT NOT NULL,
	from_state  BIGINT NOT NULL,
	event       BIGINT NOT NULL,
	to_state    BIGINT NOT NULL,
	status      TEXT NOT NULL,
	fault       BOOLEAN NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	duration_us BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS fsm_audit_log_engine_id_idx ON fsm_audit_log (engine_id, occurred_at);
`

// Store is an append-only sink for diagnostics.Record, backed by a
// pgxpool.Pool. It implements diagnostics.Diagnostics.
type Store struct {
	pool   *pgxpool.Pool
	logger corelog.Logger
}

// Open connects a pgxpool.Pool to dsn and returns a Store. Callers are
// expected to have already applied Schema; Open does not run migrations.
func Open(ctx context.Context, dsn string, logger corelog.Logger) (*Store, error) {
	if logger == nil {
		logger = corelog.New()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("auditlog: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("auditlog: ping: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Append inserts one record. It is the non-diagnostics entry point for
// callers that want to handle the error themselves instead of going
// through Observe's swallow-and-log path.
func (s *Store) Append(ctx context.Context, rec diagnostics.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO fsm_audit_log (engine_id, from_state, event, to_state, status, fault, occurred_at, duration_us)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.EngineID, rec.From, rec.Event, rec.To, rec.Status, rec.Fault, rec.Timestamp, rec.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert: %w", err)
	}
	return nil
}

// Observe implements diagnostics.Diagnostics. A failed insert is logged
// and otherwise ignored — the engine's Step call must not block or fail
// because the audit database is unreachable.
func (s *Store) Observe(rec diagnostics.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Append(ctx, rec); err != nil {
		s.logger.Warnf("auditlog: %v", err)
	}
}

// Recent returns up to limit of the most recent records for engineID,
// newest first — for an operator inspecting history, never for feeding
// state back into a live engine.
func (s *Store) Recent(ctx context.Context, engineID string, limit int) ([]diagnostics.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT from_state, event, to_state, status, fault, occurred_at, duration_us
		 FROM fsm_audit_log WHERE engine_id = $1 ORDER BY occurred_at DESC LIMIT $2`,
		engineID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query: %w", err)
	}
	defer rows.Close()

	var out []diagnostics.Record
	for rows.Next() {
		var rec diagnostics.Record
		var durationUs int64
		rec.EngineID = engineID
		if err := rows.Scan(&rec.From, &rec.Event, &rec.To, &rec.Status, &rec.Fault, &rec.Timestamp, &durationUs); err != nil {
			return nil, fmt.Errorf("auditlog: scan: %w", err)
		}
		rec.Duration = time.Duration(durationUs) * time.Microsecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the underlying connection pool.
func (s *Store) Close() { s.pool.Close() }
