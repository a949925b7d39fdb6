// Package config loads the mermaidviz.toml project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"mermaidviz/internal/naming"
	"mermaidviz/internal/render"
)

// FileName is the manifest looked up from the input directory upwards.
const FileName = "mermaidviz.toml"

// DefaultOutputDir is used when neither the manifest nor a flag names one.
const DefaultOutputDir = "diagrams"

// Manifest is a decoded mermaidviz.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config

	meta toml.MetaData
}

type Config struct {
	Render RenderConfig `toml:"render"`
	Naming NamingConfig `toml:"naming"`
	Output OutputConfig `toml:"output"`
	Local  LocalConfig  `toml:"local"`
	API    APIConfig    `toml:"api"`
}

type RenderConfig struct {
	Backend    string `toml:"backend"`
	Format     string `toml:"format"`
	Scale      int    `toml:"scale"`
	Width      int    `toml:"width"`
	Theme      string `toml:"theme"`
	Background string `toml:"background"`
	Timeout    string `toml:"timeout"` // Go duration, e.g. "45s"
}

type NamingConfig struct {
	Strategy string `toml:"strategy"`
}

type OutputConfig struct {
	Dir            string `toml:"dir"`
	Recursive      bool   `toml:"recursive"`
	LinkedMarkdown bool   `toml:"linked_markdown"`
	LevelsUp       int    `toml:"levels_up"`
	Index          bool   `toml:"index"`
}

type LocalConfig struct {
	Command []string `toml:"command"`
	Chrome  string   `toml:"chrome"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// Default returns the configuration used when no manifest is present.
func Default() Config {
	opts := render.DefaultOptions()
	return Config{
		Render: RenderConfig{
			Backend:    string(render.BackendAPI),
			Format:     opts.Format,
			Scale:      opts.Scale,
			Width:      opts.Width,
			Theme:      opts.Theme,
			Background: opts.Background,
		},
		Naming: NamingConfig{Strategy: naming.Positional.String()},
		Output: OutputConfig{Dir: DefaultOutputDir, Recursive: true, LinkedMarkdown: true, Index: true},
	}
}

// Find walks from startDir to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing startDir.
// The bool reports whether a manifest was found.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes path over Default and validates the keys it defines.
func Load(path string) (*Manifest, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	m := &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg, meta: meta}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Defined reports whether the manifest sets key, e.g. Defined("render", "scale").
// A nil manifest defines nothing.
func (m *Manifest) Defined(key ...string) bool {
	if m == nil {
		return false
	}
	return m.meta.IsDefined(key...)
}

func (m *Manifest) validate() error {
	c := &m.Config
	if _, err := render.ParseBackend(c.Render.Backend); err != nil {
		return fmt.Errorf("[render].backend: %w", err)
	}
	switch strings.ToLower(c.Render.Format) {
	case "png", "svg":
	default:
		return fmt.Errorf("[render].format must be png or svg, got %q", c.Render.Format)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("[render].scale must be positive")
	}
	if c.Render.Width <= 0 {
		return fmt.Errorf("[render].width must be positive")
	}
	if _, err := c.Render.timeout(); err != nil {
		return err
	}
	if _, err := naming.ParseStrategy(c.Naming.Strategy); err != nil {
		return fmt.Errorf("[naming].strategy: %w", err)
	}
	if c.Output.LevelsUp < 0 {
		return fmt.Errorf("[output].levels_up must not be negative")
	}
	if m.Defined("output", "dir") && strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("[output].dir must not be empty")
	}
	return nil
}

func (r RenderConfig) timeout() (time.Duration, error) {
	if strings.TrimSpace(r.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("[render].timeout must be a positive duration, got %q", r.Timeout)
	}
	return d, nil
}

// Options returns the per-diagram render options.
func (c Config) Options() render.Options {
	return render.Options{
		Format:     strings.ToLower(c.Render.Format),
		Scale:      c.Render.Scale,
		Width:      c.Render.Width,
		Theme:      c.Render.Theme,
		Background: c.Render.Background,
	}
}

// RendererConfig returns the backend construction settings.
// A zero timeout leaves each backend on its own default.
func (c Config) RendererConfig() render.Config {
	timeout, _ := c.Render.timeout()
	return render.Config{
		APIBaseURL:   c.API.BaseURL,
		APITimeout:   timeout,
		Command:      c.Local.Command,
		ChromePath:   c.Local.Chrome,
		LocalTimeout: timeout,
	}
}

// OutputDir resolves [output].dir against the manifest root.
// A nil manifest yields DefaultOutputDir.
func (m *Manifest) OutputDir() string {
	if m == nil {
		return DefaultOutputDir
	}
	dir := filepath.FromSlash(m.Config.Output.Dir)
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, dir)
}
