package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"mermaidviz/internal/config"
	"mermaidviz/internal/driver"
	"mermaidviz/internal/naming"
	"mermaidviz/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List mermaid diagrams without rendering them",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("recursive", "r", true, "scan directories recursively (--recursive=false for the top level only)")
	cmd.Flags().String("naming", naming.Positional.String(), "file naming strategy (positional|descriptive)")
	cmd.Flags().StringP("format", "f", "png", "image format used for derived names")
	cmd.Flags().String("output", "table", "listing format (table|json)")
}

type scanRow struct {
	Source   string `json:"source_file"`
	Type     string `json:"diagram_type"`
	Start    int    `json:"start_line"`
	End      int    `json:"end_line"`
	Name     string `json:"name"`
	Header   string `json:"preceding_header,omitempty"`
	Title    string `json:"diagram_title,omitempty"`
	Relative string `json:"-"`
}

func runScan(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	input := "."
	if len(args) > 0 && args[0] != "" {
		input = args[0]
	}
	manifest, _, err := config.Discover(input)
	if err != nil {
		return err
	}
	settings, err := resolveGenerateSettings(cmd, manifest)
	if err != nil {
		return err
	}
	listing, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	jobs, err := cmd.Root().PersistentFlags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	files, err := driver.MarkdownFilesFromPath(input, settings.cfg.Output.Recursive)
	if err != nil {
		return err
	}
	res, err := pipeline.Generate(cmd.Context(), &pipeline.Request{
		Files:     files,
		OutputDir: settings.outputDir,
		Options:   settings.cfg.Options(),
		Strategy:  settings.strategy,
		LevelsUp:  settings.cfg.Output.LevelsUp,
		Jobs:      jobs,
		DryRun:    true,
	})
	if err != nil {
		return err
	}

	base, _ := filepath.Abs(input)
	if !isDir(base) {
		base = filepath.Dir(base)
	}
	rows := make([]scanRow, 0, len(res.Outputs))
	for _, o := range res.Outputs {
		rel, err := filepath.Rel(base, o.Record.SourceFile)
		if err != nil {
			rel = o.Record.SourceFile
		}
		rows = append(rows, scanRow{
			Source:   o.Record.SourceFile,
			Type:     o.Record.DiagramType,
			Start:    o.Record.StartLine,
			End:      o.Record.EndLine,
			Name:     filepath.Base(o.Path),
			Header:   o.Record.PrecedingHeader,
			Title:    o.Record.DiagramTitle,
			Relative: filepath.ToSlash(rel),
		})
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(listing) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "table":
		printScanTable(out, rows)
		printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics, res.Sources, true)
		return nil
	default:
		return fmt.Errorf("unsupported output %q (must be table or json)", listing)
	}
}

func printScanTable(out io.Writer, rows []scanRow) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "no mermaid diagrams found")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("SOURCE", "TYPE", "LINES", "NAME")
	for _, r := range rows {
		t.Row(r.Relative, r.Type, fmt.Sprintf("%d-%d", r.Start, r.End), r.Name)
	}
	fmt.Fprintln(out, t.String())
	fmt.Fprintf(out, "%d diagram(s) in %d file(s)\n", len(rows), countSources(rows))
}

func countSources(rows []scanRow) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[r.Source] = struct{}{}
	}
	return len(seen)
}
