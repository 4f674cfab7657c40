// Package yamlfile reads admissions records from a YAML file, the format
// the registrar office hand-maintains. Grade and fee fields accept either a
// plain scalar or a per-shift mapping.
package yamlfile

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

type file struct {
	Departments []domain.DepartmentRecord `yaml:"departments"`
}

func (s *Source) ListRecords(ctx context.Context) ([]domain.DepartmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}

	var parsed file
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse records file %s: %w", s.path, err)
	}

	for i, record := range parsed.Departments {
		if record.Name == "" {
			return nil, fmt.Errorf("record %d in %s has no name", i+1, s.path)
		}
	}
	return parsed.Departments, nil
}
