package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"mermaidviz/internal/diagram"
)

const defaultLocalTimeout = 60 * time.Second

// DefaultCommand runs mermaid-cli through npx.
var DefaultCommand = []string{"npx", "-y", "@mermaid-js/mermaid-cli"}

var (
	// ErrRendererNotFound means the mermaid-cli command is not installed.
	ErrRendererNotFound = errors.New("mermaid-cli not found: install with npm install -g @mermaid-js/mermaid-cli")
	// ErrTimeout means the local renderer exceeded its deadline.
	ErrTimeout = errors.New("diagram generation timed out")
)

// CLIRenderer renders with a local mermaid-cli process.
type CLIRenderer struct {
	command []string
	chrome  string
	timeout time.Duration
}

// NewCLIRenderer creates a local renderer. Empty command uses DefaultCommand and
// empty chrome falls back to FindChrome at render time.
func NewCLIRenderer(command []string, chrome string, timeout time.Duration) *CLIRenderer {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = defaultLocalTimeout
	}
	return &CLIRenderer{command: command, chrome: chrome, timeout: timeout}
}

// Args builds the full argv for one render.
func (r *CLIRenderer) Args(input, output string, opts Options) []string {
	args := append([]string{}, r.command...)
	args = append(args, "-i", input, "-o", output)
	if opts.Scale > 0 {
		args = append(args, "-s", strconv.Itoa(opts.Scale))
	}
	if opts.Width > 0 {
		args = append(args, "-w", strconv.Itoa(opts.Width))
	}
	if opts.Theme != "" && opts.Theme != "default" {
		args = append(args, "-t", opts.Theme)
	}
	if opts.Background != "" && opts.Background != "white" {
		args = append(args, "-b", opts.Background)
	}
	return args
}

// Render writes content to a temporary .mmd file and runs mermaid-cli on it.
func (r *CLIRenderer) Render(ctx context.Context, content, outputPath string, opts Options) error {
	if err := prepare(content, outputPath, opts); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "mermaidviz-*.mmd")
	if err != nil {
		return fmt.Errorf("failed to create temporary input: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temporary input: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.run(ctx, r.Args(tmp.Name(), outputPath, opts)); err != nil {
		return err
	}
	return checkOutput(outputPath)
}

func (r *CLIRenderer) run(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	chrome := r.chrome
	if chrome == "" {
		chrome = FindChrome()
	}
	if chrome != "" {
		cmd.Env = append(cmd.Env, chromeEnv+"="+chrome)
	}

	var stderr, stdout strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w after %s", ErrTimeout, r.timeout)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w (%s)", ErrRendererNotFound, argv[0])
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		if msg == "" {
			return fmt.Errorf("%s: %w", argv[0], err)
		}
		return fmt.Errorf("%s: %s", argv[0], msg)
	}
	return nil
}

// Validate checks content by rendering it to a throwaway SVG.
func (r *CLIRenderer) Validate(ctx context.Context, content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyContent
	}
	// %% starts a directive or comment ahead of the declaration
	if _, ok := diagram.Match(trimmed); !ok && !strings.HasPrefix(trimmed, "%%") {
		return fmt.Errorf("%w: no recognized diagram declaration", ErrInvalidSyntax)
	}

	dir, err := os.MkdirTemp("", "mermaidviz-validate-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)
	return r.Render(ctx, content, dir+string(os.PathSeparator)+"check.svg", Options{Format: "svg"})
}
