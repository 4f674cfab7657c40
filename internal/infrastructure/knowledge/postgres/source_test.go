package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

func newSourceWithMock(t *testing.T) (*Source, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &Source{db: db}, mock, func() { _ = db.Close() }
}

var recordColumns = []string{
	"name", "localized_name", "college",
	"minimum_grade", "tuition_fee", "shifts", "admission_channels", "description",
}

func TestListRecordsScalarAndPerShiftFields(t *testing.T) {
	source, mock, done := newSourceWithMock(t)
	defer done()

	rows := sqlmock.NewRows(recordColumns).
		AddRow(
			"Dentistry", "طب الأسنان", "College of Dentistry",
			[]byte(`{"morning":"79.5%","evening":"81%"}`),
			[]byte(`{"morning":"10,000,000 IQD"}`),
			[]byte(`["morning","evening"]`),
			[]byte(`["general admission"]`),
			"",
		).
		AddRow(
			"Pharmacy", "الصيدلة", "College of Pharmacy",
			[]byte(`"93%"`),
			[]byte(`"8,000,000 IQD"`),
			[]byte(`["morning"]`),
			[]byte(`[]`),
			"Five year program.",
		)
	mock.ExpectQuery("SELECT name, localized_name, college").WillReturnRows(rows)

	records, err := source.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	dentistry := records[0]
	if dentistry.MinimumGrade.Value("evening") != "81%" {
		t.Errorf("per-shift grade = %q", dentistry.MinimumGrade.Value("evening"))
	}
	if dentistry.TuitionFee.Value("morning") != "10,000,000 IQD" {
		t.Errorf("per-shift fee = %q", dentistry.TuitionFee.Value("morning"))
	}

	pharmacy := records[1]
	if pharmacy.MinimumGrade.Value("morning") != "93%" {
		t.Errorf("scalar grade should apply to any shift, got %q", pharmacy.MinimumGrade.Value("morning"))
	}
	if got := pharmacy.MinimumGrade[domain.ShiftAll]; got != "93%" {
		t.Errorf("scalar grade stored as %q under the all key", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListRecordsPropagatesQueryError(t *testing.T) {
	source, mock, done := newSourceWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT name, localized_name, college").
		WillReturnError(errors.New("connection refused"))

	if _, err := source.ListRecords(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaSerializesUnderAdvisoryLock(t *testing.T) {
	source, mock, done := newSourceWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS department_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := source.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
