// Package pdfguide extracts the text of the ministry admission guide PDF so
// it can be chunked into the knowledge base alongside the structured
// records.
package pdfguide

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/campusworks/admissions-assistant/internal/core/domain"
)

type Loader struct {
	path  string
	title string
}

func NewLoader(path, title string) *Loader {
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &Loader{path: path, title: title}
}

func (l *Loader) Load(ctx context.Context) ([]domain.GuideText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, reader, err := pdf.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open guide pdf: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract guide text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("read guide text: %w", err)
	}

	text := normalizeWhitespace(buf.String())
	if text == "" {
		return nil, fmt.Errorf("guide pdf %s contains no extractable text", l.path)
	}
	return []domain.GuideText{{Title: l.title, Text: text}}, nil
}

// normalizeWhitespace collapses the layout-driven whitespace runs PDF
// extraction produces into single spaces.
func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
