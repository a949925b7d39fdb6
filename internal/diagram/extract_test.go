package diagram

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mermaidviz/internal/source"
)

const sampleDoc = "# Architecture\n" +
	"\n" +
	"```mermaid\n" +
	"flowchart TD\n" +
	" A --> B\n" +
	"```\n" +
	"\n" +
	"Some prose.\n" +
	"```mermaid\n" +
	"\n" +
	"```\n" +
	"## Sequence\n" +
	"~~~mermaid\n" +
	"sequenceDiagram\n" +
	"  participant Alice\n" +
	"~~~\n" +
	"```mermaid\n" +
	"xyzChart\n"

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestExtractRoundTrip(t *testing.T) {
	path := writeDoc(t, "one.md", "```mermaid\nflowchart TD\n A --> B\n```\n")

	recs, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	r := recs[0]
	if r.DiagramType != "flowchart" {
		t.Errorf("DiagramType = %q, want flowchart", r.DiagramType)
	}
	if r.Content != "flowchart TD\n A --> B" {
		t.Errorf("Content = %q", r.Content)
	}
	if r.StartLine != 2 || r.EndLine != 4 {
		t.Errorf("lines = %d..%d, want 2..4", r.StartLine, r.EndLine)
	}
	if !filepath.IsAbs(r.SourceFile) {
		t.Errorf("SourceFile %q is not absolute", r.SourceFile)
	}
}

func TestExtractTextRecords(t *testing.T) {
	recs := ExtractText("docs/sample.md", sampleDoc)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(recs), recs)
	}

	for i, r := range recs {
		if r.Index != i {
			t.Errorf("record %d has Index %d", i, r.Index)
		}
		if r.EndLine < r.StartLine {
			t.Errorf("record %d: EndLine %d < StartLine %d", i, r.EndLine, r.StartLine)
		}
		if !filepath.IsAbs(r.SourceFile) {
			t.Errorf("record %d: SourceFile %q is not absolute", i, r.SourceFile)
		}
	}

	if recs[0].PrecedingHeader != "Architecture" || !recs[0].HasHeader() {
		t.Errorf("first header = %q", recs[0].PrecedingHeader)
	}
	if recs[1].DiagramType != "sequenceDiagram" || recs[1].PrecedingHeader != "Sequence" || recs[1].DiagramTitle != "Alice" {
		t.Errorf("second record = %+v", recs[1])
	}
	last := recs[2]
	if last.DiagramType != "xyzChart" || last.HasHeader() || last.HasTitle() {
		t.Errorf("third record = %+v", last)
	}
	if last.StartLine != 18 || last.EndLine != 18 {
		t.Errorf("unterminated block lines = %d..%d, want 18..18", last.StartLine, last.EndLine)
	}
}

func TestExtractIdempotent(t *testing.T) {
	path := writeDoc(t, "doc.md", sampleDoc)
	first, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("record %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestExtractErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.md")
	if err := os.WriteFile(bad, []byte{'#', ' ', 0xc3, 0x28}, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.md"), ErrNotFound},
		{"directory", dir, ErrNotFile},
		{"invalid utf-8", bad, ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Extract(%s) error = %v, want %v", tt.path, err, tt.want)
			}
			var docErr *DocumentError
			if !errors.As(err, &docErr) {
				t.Fatalf("expected *DocumentError, got %T", err)
			}
			for _, other := range []error{ErrNotFound, ErrNotFile, ErrDecode} {
				if other != tt.want && errors.Is(err, other) {
					t.Errorf("error %v also matches %v", err, other)
				}
			}
		})
	}
}

func TestExtractFilesSkipsFailures(t *testing.T) {
	a := writeDoc(t, "a.md", "```mermaid\ngraph\n```\n")
	b := writeDoc(t, "b.md", "```mermaid\npie\n```\n```mermaid\ngantt\n```\n")

	recs := ExtractFiles([]string{b, filepath.Join(t.TempDir(), "missing.md"), a})
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	want := []string{"pie", "gantt", "graph"}
	for i, typ := range want {
		if recs[i].DiagramType != typ {
			t.Errorf("record %d type = %q, want %q", i, recs[i].DiagramType, typ)
		}
	}
	if recs[2].Index != 0 {
		t.Errorf("index restarts per document, got %d", recs[2].Index)
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/docs/architecture.md"); got != "architecture" {
		t.Errorf("Stem = %q", got)
	}
	if got := Stem("notes.v2.markdown"); got != "notes.v2" {
		t.Errorf("Stem = %q", got)
	}
}

func TestExtractFileVirtualKeepsName(t *testing.T) {
	fs := source.NewFileSet()
	virtual := fs.Get(fs.AddVirtual("gist-abc/doc.md", []byte(sampleDoc)))
	recs := ExtractFile(virtual)
	if len(recs) == 0 {
		t.Fatal("no records from virtual document")
	}
	for _, r := range recs {
		if r.SourceFile != "gist-abc/doc.md" {
			t.Errorf("SourceFile = %q, want the document name", r.SourceFile)
		}
	}

	onDisk := ExtractText("gist-abc/doc.md", sampleDoc)
	if !filepath.IsAbs(onDisk[0].SourceFile) {
		t.Errorf("ExtractText SourceFile = %q, want absolute", onDisk[0].SourceFile)
	}
}
