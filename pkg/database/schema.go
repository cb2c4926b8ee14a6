package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema creates the relational tables backing courses. The unique index on attendances
// is what turns a concurrent duplicate mark into a conflict.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		holding_id TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_companies (
		user_id TEXT NOT NULL,
		company_id TEXT NOT NULL REFERENCES companies(id),
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS user_companies_user_idx ON user_companies (user_id, start_date)`,
	`CREATE TABLE IF NOT EXISTS sub_programs (
		id TEXT PRIMARY KEY,
		program_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		sub_program_id TEXT NOT NULL REFERENCES sub_programs(id),
		holding_id TEXT,
		misc TEXT,
		archived_at TIMESTAMPTZ,
		expected_bills_count INTEGER,
		max_trainees INTEGER,
		sales_representative_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS courses_sub_program_idx ON courses (sub_program_id)`,
	`CREATE TABLE IF NOT EXISTS course_trainees (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		trainee_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (course_id, trainee_id)
	)`,
	`CREATE TABLE IF NOT EXISTS course_companies (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		company_id TEXT NOT NULL REFERENCES companies(id),
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (course_id, company_id)
	)`,
	`CREATE TABLE IF NOT EXISTS course_trainers (
		course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		trainer_id TEXT NOT NULL,
		PRIMARY KEY (course_id, trainer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS course_slots (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL REFERENCES courses(id),
		start_date TIMESTAMPTZ,
		end_date TIMESTAMPTZ,
		address TEXT,
		meeting_link TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS course_slots_course_idx ON course_slots (course_id)`,
	`CREATE TABLE IF NOT EXISTS attendances (
		id TEXT PRIMARY KEY,
		trainee_id TEXT NOT NULL,
		course_slot_id TEXT NOT NULL REFERENCES course_slots(id),
		company_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS attendances_trainee_slot_idx ON attendances (trainee_id, course_slot_id)`,
	`CREATE TABLE IF NOT EXISTS course_bills (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL REFERENCES courses(id),
		company_id TEXT NOT NULL,
		canceled_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_sheets (
		id TEXT PRIMARY KEY,
		course_id TEXT NOT NULL REFERENCES courses(id),
		company_id TEXT
	)`,
}

// EnsureSchema creates missing tables and indexes inside one transaction.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}
