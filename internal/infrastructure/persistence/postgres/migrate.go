package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrMigrationFailed wraps any error raised while applying a migration.
var ErrMigrationFailed = errors.New("postgres: migration failed")

// migrationLockKey serializes Migrate across instances starting together.
const migrationLockKey int64 = 0x61636164

// Migration is one forward-only schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations returns the schema in the order it is applied.
func Migrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_users_and_catalog", SQL: migration001Up},
		{Version: 2, Name: "create_enrollment_and_grading", SQL: migration002Up},
		{Version: 3, Name: "create_scheduling", SQL: migration003Up},
		{Version: 4, Name: "create_teaching_records", SQL: migration004Up},
	}
}

// Migrator applies Migrations and records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a migrator for the embedded schema.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{conn: conn, migrations: Migrations()}
}

const createMigrationTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`

// Migrate applies every migration not yet recorded. Each one runs in its own
// transaction under an advisory lock, and is skipped when another instance
// recorded it first.
func (m *Migrator) Migrate(ctx context.Context) error {
	if _, err := m.conn.Exec(ctx, createMigrationTableSQL); err != nil {
		return fmt.Errorf("%w: create schema_migrations: %v", ErrMigrationFailed, err)
	}
	for _, mig := range m.migrations {
		if mig.SQL == "" {
			return fmt.Errorf("%w: version %d has no SQL", ErrMigrationFailed, mig.Version)
		}
		if err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
			return apply(ctx, tx, mig)
		}); err != nil {
			return fmt.Errorf("%w: version %d (%s): %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
	}
	return nil
}

func apply(ctx context.Context, tx pgx.Tx, mig Migration) error {
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
		return err
	}
	var applied bool
	err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", mig.Version).Scan(&applied)
	if err != nil || applied {
		return err
	}
	if _, err := tx.Exec(ctx, mig.SQL); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", mig.Version, mig.Name)
	return err
}
