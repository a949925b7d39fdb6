// Package render turns mermaid source into PNG or SVG files, either through the
// mermaid.ink HTTP API or a local mermaid-cli process.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Backend selects the renderer implementation.
type Backend string

const (
	// BackendAPI renders through the mermaid.ink HTTP API.
	BackendAPI Backend = "api"
	// BackendLocal renders with a local mermaid-cli (mmdc) process.
	BackendLocal Backend = "local"
)

// ParseBackend parses "api" or "local".
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendAPI, "":
		return BackendAPI, nil
	case BackendLocal:
		return BackendLocal, nil
	default:
		return "", fmt.Errorf("unknown backend %q (want api|local)", s)
	}
}

var (
	// ErrEmptyContent is returned for blank diagram source.
	ErrEmptyContent = errors.New("diagram content is empty")
	// ErrUnsupportedFormat is returned for formats other than png and svg.
	ErrUnsupportedFormat = errors.New("unsupported output format (use png or svg)")
	// ErrEmptyOutput is returned when the renderer produced no bytes.
	ErrEmptyOutput = errors.New("renderer produced an empty file")
)

// Options are the per-diagram rendering knobs.
type Options struct {
	Format     string // png | svg
	Scale      int    // local renderer only
	Width      int    // local renderer only
	Theme      string // default | dark | forest | neutral
	Background string // CSS colour, "white" by default
}

// DefaultOptions mirrors the CLI defaults.
func DefaultOptions() Options {
	return Options{Format: "png", Scale: 3, Width: 2400, Theme: "default", Background: "white"}
}

// Renderer writes one rendered diagram to outputPath.
type Renderer interface {
	Render(ctx context.Context, content, outputPath string, opts Options) error
}

// Config configures New. Zero values pick the defaults of each backend.
type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	CacheSize  int

	Command      []string // local renderer argv prefix
	ChromePath   string   // overrides FindChrome
	LocalTimeout time.Duration
}

// New returns the renderer for backend.
func New(backend Backend, cfg Config) (Renderer, error) {
	switch backend {
	case BackendAPI:
		return NewInkRenderer(cfg.APIBaseURL, cfg.APITimeout, cfg.CacheSize)
	case BackendLocal:
		return NewCLIRenderer(cfg.Command, cfg.ChromePath, cfg.LocalTimeout), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

// prepare validates inputs and creates the output directory.
func prepare(content, outputPath string, opts Options) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if opts.Format != "png" && opts.Format != "svg" {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// checkOutput removes empty files and reports ErrEmptyOutput.
func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output file not created: %w", err)
	}
	if info.Size() == 0 {
		_ = os.Remove(path)
		return ErrEmptyOutput
	}
	return nil
}
