package migration

import (
	"context"

	"exampulse/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db sqlx.ExecerContext) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db sqlx.ExecerContext) error {
	for _, step := range r.steps() {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.DatabaseError("failed to "+step.name, err)
		}
	}
	return nil
}

type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{name: "create students table", sql: createStudentsTable},
		{name: "add students timestamps", sql: addStudentsTimestamps},
		{name: "create indexes", sql: createIndexes},
	}
}

const createStudentsTable = `
	CREATE TABLE IF NOT EXISTS students (
		id VARCHAR(64) PRIMARY KEY,
		gender VARCHAR(16) NOT NULL,
		parental_education VARCHAR(64) NOT NULL,
		test_prep VARCHAR(16) NOT NULL,
		math_score DOUBLE PRECISION NOT NULL,
		reading_score DOUBLE PRECISION NOT NULL,
		writing_score DOUBLE PRECISION NOT NULL
	)
`

const addStudentsTimestamps = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'students' AND column_name = 'created_at'
		) THEN
			ALTER TABLE students ADD COLUMN created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW();
		END IF;

		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'students' AND column_name = 'updated_at'
		) THEN
			ALTER TABLE students ADD COLUMN updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW();
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_students_parental_education ON students(parental_education);
	CREATE INDEX IF NOT EXISTS idx_students_gender ON students(gender);
	CREATE INDEX IF NOT EXISTS idx_students_test_prep ON students(test_prep);
`
