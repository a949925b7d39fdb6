package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	in := []DiagramMapping{
		New("/docs/a.md", []string{"/out/a_0_flowchart.png", "/out/a_1_sequence.png"}, "run-1"),
		New("/docs/b.md", nil, "run-1"),
	}
	in[0].Title = "Architecture"

	if err := Save(in, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d mappings, want 2", len(out))
	}
	if out[0].SourceFile != "/docs/a.md" || len(out[0].DiagramFiles) != 2 || out[0].Title != "Architecture" {
		t.Fatalf("unexpected first mapping: %+v", out[0])
	}
	if out[1].RunID != "run-1" || len(out[1].DiagramFiles) != 0 {
		t.Fatalf("unexpected second mapping: %+v", out[1])
	}
	if _, err := time.Parse(time.RFC3339, out[0].Timestamp); err != nil {
		t.Fatalf("timestamp %q is not RFC 3339: %v", out[0].Timestamp, err)
	}
}

func TestSaveWritesIndentedJSONKeys(t *testing.T) {
	dir := t.TempDir()
	if err := Save([]DiagramMapping{New("a.md", []string{"x.png"}, "")}, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, key := range []string{`"source_file"`, `"diagram_files"`, `"timestamp"`} {
		if !strings.Contains(text, key) {
			t.Errorf("mapping file misses key %s:\n%s", key, text)
		}
	}
	if strings.Contains(text, `"run_id"`) || strings.Contains(text, `"title"`) {
		t.Errorf("empty optional fields should be omitted:\n%s", text)
	}
	if !strings.Contains(text, "\n  {") {
		t.Errorf("expected two-space indentation:\n%s", text)
	}
}

func TestSaveEmptyWritesArray(t *testing.T) {
	dir := t.TempDir()
	if err := Save(nil, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("got %q, want []", data)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrNoMappings) {
		t.Fatalf("got %v, want ErrNoMappings", err)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil || errors.Is(err, ErrNoMappings) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"yaml", "---\ntitle: Service Map\ntags: [a]\n---\n# Body\n", "Service Map"},
		{"toml", "+++\ntitle = \"Release Plan\"\n+++\ntext\n", "Release Plan"},
		{"no front matter", "# Heading\n\nbody\n", ""},
		{"no title key", "---\nauthor: someone\n---\nbody\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocumentTitle([]byte(tt.content)); got != tt.want {
				t.Fatalf("DocumentTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
