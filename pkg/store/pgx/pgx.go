package pgx

import (
	"context"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

type closer interface {
	Close()
}

// Store implements store.Storage on PostgreSQL with pgvector columns for
// embeddings. Listings are ordered by a monotonically increasing sequence
// column, so the stable-order contract of store.Storage holds across
// backends.
type Store struct {
	conn pgxIConn
}

// NewStore wraps an existing connection or pool. The connection must have
// pgvector types registered (pgvectorpgx.RegisterTypes in AfterConnect).
func NewStore(conn pgxIConn) *Store {
	return &Store{conn: conn}
}

// Close closes the underlying pool if the wrapped connection supports it.
func (s *Store) Close() {
	if c, ok := s.conn.(closer); ok {
		c.Close()
	}
}

// EnsureSchema creates the demo tables if they do not exist. It is a
// bootstrap for the demo deployment, not a migration system; dims fixes the
// width of the embedding columns and must match the configured AI adapter.
func (s *Store) EnsureSchema(ctx context.Context, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS employees (
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			years_experience INT NOT NULL DEFAULT 0,
			embedding vector(%d)
		)`, dims),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS skills (
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			tags TEXT[] NOT NULL DEFAULT '{}',
			embedding vector(%d)
		)`, dims),
		`CREATE TABLE IF NOT EXISTS skill_possessions (
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			skill_id TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
			proficiency INT NOT NULL CHECK (proficiency BETWEEN 1 AND 5),
			years DOUBLE PRECISION NOT NULL DEFAULT 0,
			certified BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (employee_id, skill_id)
		)`,
		`CREATE TABLE IF NOT EXISTS app_locks (
			lock_key TEXT PRIMARY KEY,
			locked_by TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS skill_possessions_employee_idx
			ON skill_possessions (employee_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
