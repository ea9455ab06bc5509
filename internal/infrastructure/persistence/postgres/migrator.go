package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrMigrationFailed wraps every error raised while applying or reverting a
// migration.
var ErrMigrationFailed = errors.New("postgres: migration failed")

// migrationLockID serializes migrators of concurrent instances through a
// transaction-level advisory lock.
const migrationLockID = 300_000_001

// Migration is one embedded schema change. AppliedAt and IsApplied are only
// filled by Migrator.Status.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrations returns the embedded migrations in version order.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_propositions", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_follow_up", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "index_requested_documents", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

// Migrator applies and reverts the embedded migrations. Each step runs in
// its own transaction together with its bookkeeping row.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a Migrator over the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: Migrations()}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("%w: create schema_migrations: %v", ErrMigrationFailed, err)
	}
	return nil
}

// querier is satisfied by *Connection and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *Migrator) applied(ctx context.Context, q querier) (map[int]time.Time, error) {
	rows, err := q.Query(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: read schema_migrations: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	out := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("%w: scan schema_migrations: %v", ErrMigrationFailed, err)
		}
		out[version] = at
	}
	return out, rows.Err()
}

// step runs fn under the advisory lock with the versions applied so far.
func (m *Migrator) step(ctx context.Context, fn func(pgx.Tx, map[int]time.Time) error) error {
	return m.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return fmt.Errorf("%w: lock: %v", ErrMigrationFailed, err)
		}
		applied, err := m.applied(ctx, tx)
		if err != nil {
			return err
		}
		return fn(tx, applied)
	})
}

// Migrate applies every pending migration in version order.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	for _, mig := range m.migrations {
		err := m.step(ctx, func(tx pgx.Tx, applied map[int]time.Time) error {
			if _, done := applied[mig.Version]; done {
				return nil
			}
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("%w: %03d_%s: %v", ErrMigrationFailed, mig.Version, mig.Name, err)
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Rollback reverts the most recent applied migration. It does nothing on an
// empty schema.
func (m *Migrator) Rollback(ctx context.Context) error {
	if err := m.ensureTable(ctx); err != nil {
		return err
	}
	return m.step(ctx, func(tx pgx.Tx, applied map[int]time.Time) error {
		if len(applied) == 0 {
			return nil
		}
		versions := make([]int, 0, len(applied))
		for v := range applied {
			versions = append(versions, v)
		}
		last := slices.Max(versions)

		i := slices.IndexFunc(m.migrations, func(mig Migration) bool { return mig.Version == last })
		if i < 0 || m.migrations[i].DownSQL == "" {
			return fmt.Errorf("%w: no down migration for version %d", ErrMigrationFailed, last)
		}
		if _, err := tx.Exec(ctx, m.migrations[i].DownSQL); err != nil {
			return fmt.Errorf("%w: revert %03d_%s: %v", ErrMigrationFailed, last, m.migrations[i].Name, err)
		}
		_, err := tx.Exec(ctx, "DELETE FROM schema_migrations WHERE version = $1", last)
		return err
	})
}

// Status lists every embedded migration with its applied state.
func (m *Migrator) Status(ctx context.Context) ([]Migration, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	applied, err := m.applied(ctx, m.conn)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(m.migrations)
	for i := range out {
		if at, ok := applied[out[i].Version]; ok {
			out[i].IsApplied = true
			out[i].AppliedAt = at
		}
	}
	return out, nil
}
