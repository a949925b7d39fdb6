package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mermaidviz/internal/config"
	"mermaidviz/internal/diag"
	"mermaidviz/internal/driver"
	"mermaidviz/internal/gist"
	"mermaidviz/internal/naming"
	"mermaidviz/internal/observ"
	"mermaidviz/internal/pipeline"
	"mermaidviz/internal/render"
	"mermaidviz/internal/source"
	"mermaidviz/internal/trace"
)

// diskCacheApp names the extraction cache directory under the user cache root.
const diskCacheApp = "mermaidviz"

// memoryCacheSize bounds documents kept by the in-process extraction cache.
const memoryCacheSize = 256

var generateCmd = &cobra.Command{
	Use:   "generate [path|gist-url]",
	Short: "Extract and render mermaid diagrams",
	Long: `Scan a Markdown file, a directory of Markdown files or a GitHub gist for mermaid
blocks and render each one. Settings come from mermaidviz.toml when present; flags
override the manifest only when set explicitly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir, "directory for images, mappings and galleries")
	cmd.Flags().StringP("format", "f", "png", "image format (png|svg)")
	cmd.Flags().IntP("scale", "s", 3, "scale factor (local backend)")
	cmd.Flags().IntP("width", "w", 2400, "image width in pixels (local backend)")
	cmd.Flags().String("theme", "default", "mermaid theme (default|dark|forest|neutral)")
	cmd.Flags().String("background", "white", "background colour")
	cmd.Flags().String("backend", string(render.BackendAPI), "renderer backend (api|local)")
	cmd.Flags().String("naming", naming.Positional.String(), "file naming strategy (positional|descriptive)")
	cmd.Flags().BoolP("recursive", "r", true, "scan directories recursively (--recursive=false for the top level only)")
	cmd.Flags().Bool("linked-markdown", true, "write images next to each document plus a <name>_linked copy (--linked-markdown=false renders into --output-dir)")
	cmd.Flags().Int("levels-up", pipeline.DefaultLevelsUp, "directory levels above a document that name its project")
	cmd.Flags().Bool("no-index", false, "skip index.html generation")
	cmd.Flags().Bool("disk-cache", false, "cache extraction results under the user cache directory")
	cmd.Flags().Bool("dry-run", false, "list planned outputs without rendering")
}

// generateSettings are the resolved knobs of one run.
type generateSettings struct {
	cfg       config.Config
	outputDir string
	backend   render.Backend
	strategy  naming.Strategy
	noIndex   bool
	diskCache bool
	dryRun    bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	input := "."
	if len(args) > 0 && args[0] != "" {
		input = args[0]
	}

	timer := observ.NewTimer()
	discoverIdx := timer.Begin("discover")

	var files []string
	var docs []driver.Document
	fromGist := gist.IsGistURL(input)
	startDir := input
	if fromGist {
		docs, err = fetchGist(ctx, input)
		if err != nil {
			return err
		}
		startDir = "."
	}

	manifest, found, err := config.Discover(startDir)
	if err != nil {
		return err
	}
	settings, err := resolveGenerateSettings(cmd, manifest)
	if err != nil {
		return err
	}
	if found && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "using %s\n", manifest.Path)
	}

	if !fromGist {
		files, err = driver.MarkdownFilesFromPath(input, settings.cfg.Output.Recursive)
		if err != nil {
			return err
		}
	} else {
		// документы из gist существуют только в памяти: писать рядом с ними некуда
		settings.cfg.Output.LinkedMarkdown = false
		settings.cfg.Output.LevelsUp = 1
	}
	total := len(files) + len(docs)
	timer.End(discoverIdx, fmt.Sprintf("%d files", total))
	trace.Logf(ctx, trace.ScopeDriver, "discover", "%d markdown files under %s", total, input)

	if total == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), color.YellowString("No markdown files found."))
		}
		return nil
	}

	req, err := buildGenerateRequest(settings, files, jobs, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	req.Documents = docs

	withUI, err := useTUI(cmd)
	if err != nil {
		return err
	}

	genIdx := timer.Begin("generate")
	var res pipeline.Result
	if withUI && !settings.dryRun {
		res, err = runGenerateWithUI(ctx, "generating diagrams", req)
	} else {
		res, err = pipeline.Generate(ctx, req)
	}
	timer.End(genIdx, fmt.Sprintf("%d diagrams", len(res.Outputs)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if settings.dryRun {
		printPlannedOutputs(out, res.Outputs)
	} else if !quiet {
		printGenerateSummary(out, &res)
	}
	printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics, res.Sources, quiet)

	if showTimings {
		printStageTimings(out, res.Timings)
		printPhaseTimings(out, timer)
	}
	if res.DiagramsFailed > 0 {
		return fmt.Errorf("%d diagram(s) failed to render", res.DiagramsFailed)
	}
	return nil
}

// fetchGist names each file gist-<id>/<file> so the gist id becomes the project directory.
func fetchGist(ctx context.Context, url string) ([]driver.Document, error) {
	id, err := gist.ExtractID(url)
	if err != nil {
		return nil, err
	}
	client := gist.NewClient(os.Getenv("GITHUB_TOKEN"))
	files, err := client.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gist: %w", err)
	}
	docs := make([]driver.Document, 0, len(files))
	for _, f := range files {
		docs = append(docs, driver.Document{Name: filepath.Join("gist-"+id, f.Filename), Content: []byte(f.Content)})
	}
	return docs, nil
}

// resolveGenerateSettings layers explicitly set flags over the manifest (or defaults).
// Flags the command does not define are never Changed, so scan shares it.
func resolveGenerateSettings(cmd *cobra.Command, manifest *config.Manifest) (generateSettings, error) {
	var s generateSettings
	s.cfg = config.Default()
	s.outputDir = config.DefaultOutputDir
	if manifest != nil {
		s.cfg = manifest.Config
		s.outputDir = manifest.OutputDir()
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("output-dir") {
		if s.outputDir, err = flags.GetString("output-dir"); err != nil {
			return s, fmt.Errorf("failed to get output-dir flag: %w", err)
		}
	}
	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"format", &s.cfg.Render.Format},
		{"theme", &s.cfg.Render.Theme},
		{"background", &s.cfg.Render.Background},
		{"backend", &s.cfg.Render.Backend},
		{"naming", &s.cfg.Naming.Strategy},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}
	intFlags := []struct {
		name string
		dst  *int
	}{
		{"scale", &s.cfg.Render.Scale},
		{"width", &s.cfg.Render.Width},
		{"levels-up", &s.cfg.Output.LevelsUp},
	}
	for _, f := range intFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetInt(f.name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}
	boolFlags := []struct {
		name string
		dst  *bool
	}{
		{"recursive", &s.cfg.Output.Recursive},
		{"linked-markdown", &s.cfg.Output.LinkedMarkdown},
		{"no-index", &s.noIndex},
		{"disk-cache", &s.diskCache},
		{"dry-run", &s.dryRun},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetBool(f.name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}

	s.cfg.Render.Format = strings.ToLower(s.cfg.Render.Format)
	switch s.cfg.Render.Format {
	case "png", "svg":
	default:
		return s, fmt.Errorf("unsupported format %q (must be png or svg)", s.cfg.Render.Format)
	}
	if s.backend, err = render.ParseBackend(s.cfg.Render.Backend); err != nil {
		return s, err
	}
	if s.strategy, err = naming.ParseStrategy(s.cfg.Naming.Strategy); err != nil {
		return s, err
	}
	if s.cfg.Render.Scale <= 0 || s.cfg.Render.Width <= 0 {
		return s, fmt.Errorf("scale and width must be positive")
	}
	return s, nil
}

func buildGenerateRequest(s generateSettings, files []string, jobs int, errOut io.Writer) (*pipeline.Request, error) {
	rc := s.cfg.RendererConfig()
	if rc.APIBaseURL == "" {
		rc.APIBaseURL = os.Getenv("MERMAIDVIZ_API_URL")
	}
	rc.CacheSize = memoryCacheSize

	var renderer render.Renderer
	if !s.dryRun {
		var err error
		if renderer, err = render.New(s.backend, rc); err != nil {
			return nil, err
		}
	}

	extractor := &driver.Extractor{
		OnCacheError: func(path string, err error) {
			fmt.Fprintf(errOut, "cache: %s: %v\n", path, err)
		},
	}
	mem, err := driver.NewMemoryCache(memoryCacheSize)
	if err != nil {
		return nil, err
	}
	extractor.Memory = mem
	if s.diskCache {
		disk, err := driver.OpenDiskCache(diskCacheApp)
		if err != nil {
			fmt.Fprintf(errOut, "cache: disabled: %v\n", err)
		} else {
			extractor.Disk = disk
		}
	}

	return &pipeline.Request{
		Files:          files,
		OutputDir:      s.outputDir,
		Renderer:       renderer,
		Options:        s.cfg.Options(),
		Strategy:       s.strategy,
		LinkedMarkdown: s.cfg.Output.LinkedMarkdown,
		LevelsUp:       s.cfg.Output.LevelsUp,
		Index:          s.cfg.Output.Index && !s.noIndex,
		Jobs:           jobs,
		DryRun:         s.dryRun,
		Extractor:      extractor,
	}, nil
}

func printPlannedOutputs(out io.Writer, outputs []pipeline.Output) {
	for _, o := range outputs {
		fmt.Fprintf(out, "%s:%d-%d %s -> %s\n", o.Record.SourceFile, o.Record.StartLine, o.Record.EndLine, o.Record.DiagramType, o.Path)
	}
	fmt.Fprintf(out, "%d diagram(s) planned\n", len(outputs))
}

func printGenerateSummary(out io.Writer, res *pipeline.Result) {
	fmt.Fprintln(out, color.New(color.FgCyan, color.Bold).Sprint("Summary:"))
	fmt.Fprintf(out, "  Files processed: %d\n", res.FilesProcessed)
	fmt.Fprintf(out, "  Diagrams generated: %s\n", color.GreenString("%d", res.DiagramsGenerated))
	if res.DiagramsFailed > 0 {
		fmt.Fprintf(out, "  Diagrams failed: %s\n", color.RedString("%d", res.DiagramsFailed))
	}
}

// printDiagnostics writes warnings and errors; info entries only without --quiet.
// A diagnostic tied to a line of a loaded document quotes that line.
func printDiagnostics(out io.Writer, bag *diag.Bag, sources *source.FileSet, quiet bool) {
	if bag == nil {
		return
	}
	for _, d := range bag.Items() {
		var c *color.Color
		switch d.Severity {
		case diag.SevError:
			c = color.New(color.FgRed)
		case diag.SevWarning:
			c = color.New(color.FgYellow)
		default:
			if quiet {
				continue
			}
			c = color.New(color.Faint)
		}
		fmt.Fprintln(out, c.Sprint(d.String()))
		if line, ok := quoteLine(sources, d); ok {
			fmt.Fprintln(out, color.New(color.Faint).Sprint("    | "+line))
		}
	}
}

func quoteLine(sources *source.FileSet, d diag.Diagnostic) (string, bool) {
	if sources == nil || d.Line <= 0 {
		return "", false
	}
	id, ok := sources.GetLatest(d.File)
	if !ok {
		return "", false
	}
	n, err := safecast.Conv[uint32](d.Line)
	if err != nil {
		return "", false
	}
	line := strings.TrimRight(sources.Get(id).GetLine(n), " \t")
	return line, line != ""
}
