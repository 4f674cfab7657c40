package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
	"github.com/campusworks/admissions-assistant/internal/core/textproc"
)

const (
	documentKeywords = 15
	chunkMaxLength   = 500
	chunkOverlap     = 50
)

// BuildDocuments synthesizes the knowledge base from structured admissions
// records: one department overview, one admission-requirements document, and
// one fee document per record, each enriched with keywords and chunks.
func BuildDocuments(records []domain.DepartmentRecord) []domain.Document {
	docs := make([]domain.Document, 0, 3*len(records))
	for _, record := range records {
		slug := slugify(record.Name)
		base := map[string]string{
			"department":           record.Name,
			"department_localized": record.LocalizedName,
		}
		if record.College != "" {
			base["college"] = record.College
		}
		if len(record.Shifts) > 0 {
			base["shifts"] = strings.Join(record.Shifts, ", ")
		}

		docs = append(docs, enhanceDocument(domain.Document{
			ID:      "dept_" + slug,
			Type:    domain.TypeDepartment,
			Content: departmentContent(record),
		}, base))

		if len(record.MinimumGrade) > 0 || len(record.AdmissionChannels) > 0 {
			metadata := cloneMetadata(base)
			metadata["minimum_grade"] = formatShiftValues(record.MinimumGrade)
			docs = append(docs, enhanceDocument(domain.Document{
				ID:      "admission_" + slug,
				Type:    domain.TypeAdmission,
				Content: admissionContent(record),
			}, metadata))
		}

		if len(record.TuitionFee) > 0 {
			metadata := cloneMetadata(base)
			metadata["tuition_fee"] = formatShiftValues(record.TuitionFee)
			docs = append(docs, enhanceDocument(domain.Document{
				ID:      "fee_" + slug,
				Type:    domain.TypeFee,
				Content: feeContent(record),
			}, metadata))
		}
	}
	return docs
}

// BuildGuideDocuments chunks free-form guide material (an admission guide
// PDF, typically) into admission-type documents.
func BuildGuideDocuments(guides []domain.GuideText) []domain.Document {
	docs := make([]domain.Document, 0, len(guides))
	for _, guide := range guides {
		slug := slugify(guide.Title)
		for i, chunk := range textproc.ChunkText(guide.Text, chunkMaxLength, chunkOverlap) {
			docs = append(docs, enhanceDocument(domain.Document{
				ID:      fmt.Sprintf("admission_%s_%d", slug, i+1),
				Type:    domain.TypeAdmission,
				Content: chunk,
			}, map[string]string{"guide": guide.Title}))
		}
	}
	return docs
}

func enhanceDocument(doc domain.Document, metadata map[string]string) domain.Document {
	doc.Keywords = textproc.ExtractKeywords(doc.Content, documentKeywords)
	doc.Chunks = textproc.ChunkText(doc.Content, chunkMaxLength, chunkOverlap)
	doc.WordCount = len(strings.Fields(doc.Content))
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]string, len(metadata))
	}
	for key, value := range metadata {
		doc.Metadata[key] = value
	}
	return doc
}

func departmentContent(record domain.DepartmentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The %s department", record.Name)
	if record.LocalizedName != "" {
		fmt.Fprintf(&b, " (%s)", record.LocalizedName)
	}
	if record.College != "" {
		fmt.Fprintf(&b, " belongs to %s", record.College)
	}
	b.WriteString(".")
	if len(record.Shifts) > 0 {
		fmt.Fprintf(&b, " Study is offered in the %s shift", strings.Join(record.Shifts, " and "))
		if len(record.Shifts) > 1 {
			b.WriteString("s")
		}
		b.WriteString(".")
	}
	if record.Description != "" {
		b.WriteString(" ")
		b.WriteString(record.Description)
	}
	return b.String()
}

func admissionContent(record domain.DepartmentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Admission to the %s department", record.Name)
	if record.LocalizedName != "" {
		fmt.Fprintf(&b, " (%s)", record.LocalizedName)
	}
	if len(record.MinimumGrade) > 0 {
		fmt.Fprintf(&b, " requires a minimum grade of %s", formatShiftValues(record.MinimumGrade))
	}
	b.WriteString(".")
	if len(record.AdmissionChannels) > 0 {
		fmt.Fprintf(&b, " Applications are accepted through %s.", strings.Join(record.AdmissionChannels, ", "))
	}
	return b.String()
}

func feeContent(record domain.DepartmentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The annual tuition fee for the %s department", record.Name)
	if record.LocalizedName != "" {
		fmt.Fprintf(&b, " (%s)", record.LocalizedName)
	}
	fmt.Fprintf(&b, " is %s.", formatShiftValues(record.TuitionFee))
	return b.String()
}

// formatShiftValues renders a scalar-or-per-shift field as prose: either the
// plain figure or "X for the morning shift and Y for the evening shift".
func formatShiftValues(values domain.ShiftValues) string {
	if len(values) == 0 {
		return ""
	}
	if scalar, ok := values[domain.ShiftAll]; ok && len(values) == 1 {
		return scalar
	}

	shifts := make([]string, 0, len(values))
	for shift := range values {
		shifts = append(shifts, shift)
	}
	sort.Strings(shifts)

	parts := make([]string, 0, len(shifts))
	for _, shift := range shifts {
		parts = append(parts, fmt.Sprintf("%s for the %s shift", values[shift], shift))
	}
	return strings.Join(parts, " and ")
}

func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+2)
	for key, value := range m {
		out[key] = value
	}
	return out
}

func slugify(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}
