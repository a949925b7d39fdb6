package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"mermaidviz/internal/diagram"
)

// fakeMMDC writes a shell script that mimics mmdc: it copies the -i file to -o
// and records the chrome path it saw.
func fakeMMDC(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script renderer not supported on windows")
	}
	script := filepath.Join(t.TempDir(), "mmdc")
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return script
}

const copyScript = `
in=""; out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift 2 ;;
    -o) out="$2"; shift 2 ;;
    *) shift ;;
  esac
done
cp "$in" "$out"
echo "$PUPPETEER_EXECUTABLE_PATH" > "$out.chrome"
`

func TestCLIRendererRender(t *testing.T) {
	script := fakeMMDC(t, copyScript)
	r := NewCLIRenderer([]string{script}, "/opt/fake-chrome", time.Minute)

	out := filepath.Join(t.TempDir(), "out", "d.png")
	if err := r.Render(context.Background(), "graph TD\nA-->B", out, DefaultOptions()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || string(data) != "graph TD\nA-->B" {
		t.Fatalf("output = %q, %v", data, err)
	}
	chrome, _ := os.ReadFile(out + ".chrome")
	if strings.TrimSpace(string(chrome)) != "/opt/fake-chrome" {
		t.Errorf("chrome env = %q", chrome)
	}
}

func TestCLIRendererFailures(t *testing.T) {
	fail := fakeMMDC(t, "echo 'Parse error on line 2' >&2\nexit 1\n")
	r := NewCLIRenderer([]string{fail}, "/none", time.Minute)
	err := r.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "x.png"), DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "Parse error on line 2") {
		t.Errorf("expected stderr in error, got %v", err)
	}

	empty := fakeMMDC(t, copyScript+"\n: > \"$out\"\n")
	r = NewCLIRenderer([]string{empty}, "/none", time.Minute)
	out := filepath.Join(t.TempDir(), "e.png")
	if err := r.Render(context.Background(), "graph TD", out, DefaultOptions()); !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("expected ErrEmptyOutput, got %v", err)
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("empty output should be removed")
	}

	slow := fakeMMDC(t, "exec sleep 5\n")
	r = NewCLIRenderer([]string{slow}, "/none", 100*time.Millisecond)
	if err := r.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "s.png"), DefaultOptions()); !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}

	r = NewCLIRenderer([]string{"mermaidviz-definitely-missing-binary"}, "/none", time.Minute)
	if err := r.Render(context.Background(), "graph TD", filepath.Join(t.TempDir(), "m.png"), DefaultOptions()); !errors.Is(err, ErrRendererNotFound) {
		t.Errorf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestCLIRendererArgs(t *testing.T) {
	r := NewCLIRenderer(nil, "", 0)
	got := r.Args("in.mmd", "out.png", Options{Format: "png", Scale: 3, Width: 2400, Theme: "forest", Background: "transparent"})
	want := []string{"npx", "-y", "@mermaid-js/mermaid-cli", "-i", "in.mmd", "-o", "out.png", "-s", "3", "-w", "2400", "-t", "forest", "-b", "transparent"}
	if !slices.Equal(got, want) {
		t.Errorf("Args = %v\nwant %v", got, want)
	}
	if !slices.Equal(DefaultCommand, []string{"npx", "-y", "@mermaid-js/mermaid-cli"}) {
		t.Error("Args modified DefaultCommand")
	}
}

func TestValidate(t *testing.T) {
	script := fakeMMDC(t, copyScript)
	r := NewCLIRenderer([]string{script}, "/none", time.Minute)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"graph", "graph TD\nA-->B", nil},
		{"directive first", "%%{init: {'theme': 'dark'}}%%\ngraph TD\nA-->B", nil},
		{"prose", "hello world", ErrInvalidSyntax},
		{"lowercase keyword", "sequencediagram\nA->>B: hi", ErrInvalidSyntax},
		{"blank", " ", ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate(context.Background(), tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate(%q) = %v", tt.content, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) = %v, want %v", tt.content, err, tt.wantErr)
			}
		})
	}

	for _, k := range diagram.Vocabulary {
		if err := r.Validate(context.Background(), k.Keyword+"\n  x"); err != nil {
			t.Errorf("Validate(%s) = %v", k.Keyword, err)
		}
	}
}

func TestFindChrome(t *testing.T) {
	home := t.TempDir()
	envChrome := filepath.Join(home, "env-chrome")
	if err := os.WriteFile(envChrome, nil, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := findChrome(envChrome, home, nil); got != envChrome {
		t.Errorf("env path: got %q", got)
	}

	for _, v := range []string{"118.0.1", "121.0.2"} {
		p := filepath.Join(home, ".cache", "puppeteer", "chrome", v, "chrome-linux64", "chrome")
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, nil, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	got := findChrome(filepath.Join(home, "missing"), home, nil)
	if !strings.Contains(got, "121.0.2") {
		t.Errorf("expected newest puppeteer chrome, got %q", got)
	}

	system := filepath.Join(t.TempDir(), "google-chrome")
	if err := os.WriteFile(system, nil, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := findChrome("", "", []string{"/nope", system}); got != system {
		t.Errorf("system path: got %q", got)
	}
	if got := findChrome("", "", []string{"/nope"}); got != "" {
		t.Errorf("expected no chrome, got %q", got)
	}
}
