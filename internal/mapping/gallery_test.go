package mapping

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readIndex(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	return string(data)
}

func TestWriteIndexSections(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "nested", "doc_0_flowchart.png")
	mappings := []DiagramMapping{
		{SourceFile: "/docs/doc.md", DiagramFiles: []string{img}, Timestamp: "2024-01-02T03:04:05Z", Title: "Doc <One>"},
		{SourceFile: "/docs/empty.md", Timestamp: "2024-01-02T03:04:05Z"},
	}

	path, err := WriteIndex(mappings, dir)
	if err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	if path != filepath.Join(dir, IndexFile) {
		t.Fatalf("path = %s", path)
	}
	html := readIndex(t, path)

	for _, want := range []string{
		`src="nested/doc_0_flowchart.png"`,
		"Doc &lt;One&gt;",
		"empty.md",
		"/docs/doc.md",
		"2024-01-02T03:04:05Z",
		"No diagrams found.",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("index misses %q", want)
		}
	}
	if strings.Contains(html, "No diagrams generated yet.") {
		t.Error("non-empty index should not carry the empty-state message")
	}
}

func TestWriteIndexEmpty(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteIndex(nil, dir)
	if err != nil {
		t.Fatalf("WriteIndex: %v", err)
	}
	if html := readIndex(t, path); !strings.Contains(html, "No diagrams generated yet.") {
		t.Fatalf("empty index misses empty-state message:\n%s", html)
	}
}

func TestImageSrc(t *testing.T) {
	dir := t.TempDir()
	if got := imageSrc(dir, filepath.Join(dir, "a.png")); got != "a.png" {
		t.Errorf("inside dir: got %q", got)
	}
	outside := filepath.Join(filepath.Dir(dir), "elsewhere", "b.png")
	if got := imageSrc(dir, outside); got != "b.png" {
		t.Errorf("outside dir: got %q", got)
	}
	if got := imageSrc(dir, "rel/c.png"); got != "rel/c.png" {
		t.Errorf("relative: got %q", got)
	}
}
