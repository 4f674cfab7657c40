// Package postgres reads admissions records from the registrar database.
// Grade and fee columns are JSONB and hold either a plain string or a
// per-shift object; both decode into the same domain type.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type Source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) *Source {
	return &Source{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Source) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent assistant startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS department_records (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	localized_name TEXT NOT NULL DEFAULT '',
	college TEXT NOT NULL DEFAULT '',
	minimum_grade JSONB NOT NULL DEFAULT '{}'::jsonb,
	tuition_fee JSONB NOT NULL DEFAULT '{}'::jsonb,
	shifts JSONB NOT NULL DEFAULT '[]'::jsonb,
	admission_channels JSONB NOT NULL DEFAULT '[]'::jsonb,
	description TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_department_records_name ON department_records(name);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (s *Source) ListRecords(ctx context.Context) ([]domain.DepartmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, localized_name, college, minimum_grade, tuition_fee, shifts, admission_channels, description
FROM department_records
ORDER BY name
`)
	if err != nil {
		return nil, fmt.Errorf("query department records: %w", err)
	}
	defer rows.Close()

	var records []domain.DepartmentRecord
	for rows.Next() {
		var (
			record      domain.DepartmentRecord
			gradeRaw    []byte
			feeRaw      []byte
			shiftsRaw   []byte
			channelsRaw []byte
		)
		err := rows.Scan(
			&record.Name, &record.LocalizedName, &record.College,
			&gradeRaw, &feeRaw, &shiftsRaw, &channelsRaw, &record.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("scan department record: %w", err)
		}

		if err := json.Unmarshal(gradeRaw, &record.MinimumGrade); err != nil {
			return nil, fmt.Errorf("unmarshal minimum grade for %s: %w", record.Name, err)
		}
		if err := json.Unmarshal(feeRaw, &record.TuitionFee); err != nil {
			return nil, fmt.Errorf("unmarshal tuition fee for %s: %w", record.Name, err)
		}
		if err := json.Unmarshal(shiftsRaw, &record.Shifts); err != nil {
			return nil, fmt.Errorf("unmarshal shifts for %s: %w", record.Name, err)
		}
		if err := json.Unmarshal(channelsRaw, &record.AdmissionChannels); err != nil {
			return nil, fmt.Errorf("unmarshal admission channels for %s: %w", record.Name, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate department records: %w", err)
	}
	return records, nil
}
