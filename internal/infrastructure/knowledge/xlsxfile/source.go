// Package xlsxfile reads admissions records from the registrar's Excel
// workbook. The first row names the columns; grade and fee cells hold either
// a plain figure or "shift=value" pairs separated by semicolons.
package xlsxfile

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type Source struct {
	path string
}

func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) ListRecords(ctx context.Context) ([]domain.DepartmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", s.path)
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s has no data rows", sheets[0])
	}

	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("sheet %s has no name column", sheets[0])
	}

	records := make([]domain.DepartmentRecord, 0, len(rows)-1)
	for rowIdx, row := range rows[1:] {
		cell := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := cell("name")
		if name == "" {
			continue
		}

		record := domain.DepartmentRecord{
			Name:              name,
			LocalizedName:     cell("localized_name"),
			College:           cell("college"),
			MinimumGrade:      parseShiftValues(cell("minimum_grade")),
			TuitionFee:        parseShiftValues(cell("tuition_fee")),
			Shifts:            splitList(cell("shifts")),
			AdmissionChannels: splitList(cell("admission_channels")),
			Description:       cell("description"),
		}
		if len(record.MinimumGrade) == 0 && len(record.TuitionFee) == 0 {
			return nil, fmt.Errorf("row %d (%s) has neither a grade nor a fee", rowIdx+2, name)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseShiftValues(cell string) domain.ShiftValues {
	if cell == "" {
		return nil
	}
	if !strings.Contains(cell, "=") {
		return domain.ShiftValues{domain.ShiftAll: cell}
	}

	values := make(domain.ShiftValues)
	for _, pair := range strings.Split(cell, ";") {
		shift, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		shift = strings.TrimSpace(shift)
		value = strings.TrimSpace(value)
		if shift != "" && value != "" {
			values[shift] = value
		}
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
