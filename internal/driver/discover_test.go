package driver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "")
	writeFile(t, filepath.Join(dir, "a.markdown"), "")
	writeFile(t, filepath.Join(dir, "NOTES.MD"), "")
	writeFile(t, filepath.Join(dir, "skip.txt"), "")
	writeFile(t, filepath.Join(dir, "sub", "c.md"), "")

	flat, err := FindMarkdownFiles(dir, false)
	if err != nil {
		t.Fatalf("FindMarkdownFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "NOTES.MD"),
		filepath.Join(dir, "a.markdown"),
		filepath.Join(dir, "b.md"),
	}
	if len(flat) != len(want) {
		t.Fatalf("flat = %v, want %v", flat, want)
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("flat[%d] = %q, want %q", i, flat[i], want[i])
		}
	}

	deep, err := FindMarkdownFiles(dir, true)
	if err != nil {
		t.Fatalf("FindMarkdownFiles recursive: %v", err)
	}
	if len(deep) != 4 || deep[3] != filepath.Join(dir, "sub", "c.md") {
		t.Errorf("recursive = %v", deep)
	}
}

func TestFindMarkdownFilesErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindMarkdownFiles(filepath.Join(dir, "missing"), true); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing dir: got %v", err)
	}
	file := filepath.Join(dir, "x.md")
	writeFile(t, file, "")
	if _, err := FindMarkdownFiles(file, true); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file as dir: got %v", err)
	}
}

func TestMarkdownFilesFromPath(t *testing.T) {
	dir := t.TempDir()
	md := filepath.Join(dir, "doc.md")
	txt := filepath.Join(dir, "doc.txt")
	writeFile(t, md, "")
	writeFile(t, txt, "")

	got, err := MarkdownFilesFromPath(md, true)
	if err != nil || len(got) != 1 || got[0] != md {
		t.Errorf("single file = %v, %v", got, err)
	}
	if _, err := MarkdownFilesFromPath(txt, true); !errors.Is(err, ErrNotMarkdown) {
		t.Errorf("non-markdown: got %v", err)
	}
	if _, err := MarkdownFilesFromPath(filepath.Join(dir, "nope"), true); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing: got %v", err)
	}
	got, err = MarkdownFilesFromPath(dir, false)
	if err != nil || len(got) != 1 {
		t.Errorf("directory = %v, %v", got, err)
	}
}

func TestProjectName(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "MyProject", "docs", "file.md")

	if got := ProjectName(path, 2); got != "MyProject" {
		t.Errorf("ProjectName(2) = %q", got)
	}
	if got := ProjectName(path, 1); got != "docs" {
		t.Errorf("ProjectName(1) = %q", got)
	}
	if got := ProjectName(path, 500); got != "docs" {
		t.Errorf("ProjectName beyond root = %q, want parent fallback", got)
	}
}
