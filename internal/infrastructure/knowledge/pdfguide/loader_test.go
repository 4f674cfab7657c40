package pdfguide

import "testing"

func TestNormalizeWhitespace(t *testing.T) {
	in := "  Admission \n\n guide\t2026 \r\n applies  to all colleges. "
	want := "Admission guide 2026 applies to all colleges."
	if got := normalizeWhitespace(in); got != want {
		t.Errorf("normalizeWhitespace = %q, want %q", got, want)
	}
}

func TestLoaderDerivesTitleFromFilename(t *testing.T) {
	loader := NewLoader("/data/admission-guide-2026.pdf", "")
	if loader.title != "admission-guide-2026" {
		t.Errorf("title = %q", loader.title)
	}

	named := NewLoader("/data/guide.pdf", "Admission Guide")
	if named.title != "Admission Guide" {
		t.Errorf("title = %q", named.title)
	}
}
