package yamlfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

const sampleYAML = `
departments:
  - name: Dentistry
    localized_name: طب الأسنان
    college: College of Dentistry
    minimum_grade:
      morning: "79.5%"
      evening: "81%"
    tuition_fee:
      morning: "10,000,000 IQD"
    shifts: [morning, evening]
    admission_channels: [general admission]
  - name: Pharmacy
    localized_name: الصيدلة
    minimum_grade: "93%"
    tuition_fee: "8,000,000 IQD"
    shifts: [morning]
`

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "departments.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}

func TestListRecords(t *testing.T) {
	source := NewSource(writeTempYAML(t, sampleYAML))

	records, err := source.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	dentistry := records[0]
	if dentistry.LocalizedName != "طب الأسنان" || dentistry.College != "College of Dentistry" {
		t.Errorf("dentistry = %+v", dentistry)
	}
	if dentistry.MinimumGrade.Value("evening") != "81%" {
		t.Errorf("per-shift grade = %q", dentistry.MinimumGrade.Value("evening"))
	}

	pharmacy := records[1]
	if pharmacy.MinimumGrade[domain.ShiftAll] != "93%" {
		t.Errorf("scalar grade = %v", pharmacy.MinimumGrade)
	}
	if pharmacy.TuitionFee.Value("morning") != "8,000,000 IQD" {
		t.Errorf("scalar fee should apply to any shift, got %q", pharmacy.TuitionFee.Value("morning"))
	}
}

func TestListRecordsRejectsNamelessRecord(t *testing.T) {
	source := NewSource(writeTempYAML(t, "departments:\n  - college: Somewhere\n"))

	if _, err := source.ListRecords(context.Background()); err == nil {
		t.Fatalf("expected error for a record without a name")
	}
}

func TestListRecordsMissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := source.ListRecords(context.Background()); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
