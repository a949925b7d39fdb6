package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mermaidviz/internal/version"
)

const versionTagline = "diagrams out of prose"

type versionOptions struct {
	format   string
	showHash bool
	showDate bool
}

type versionPayload struct {
	Tool    string `json:"tool"`
	Tagline string `json:"tagline"`
	version.Info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mermaidviz build information",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	hash, err := cmd.Flags().GetBool("hash")
	if err != nil {
		return fmt.Errorf("failed to get hash flag: %w", err)
	}
	date, err := cmd.Flags().GetBool("date")
	if err != nil {
		return fmt.Errorf("failed to get date flag: %w", err)
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	opts := versionOptions{
		format:   strings.ToLower(format),
		showHash: hash || full,
		showDate: date || full,
	}

	info := version.Current()
	switch opts.format {
	case "pretty":
		renderVersionPretty(cmd.OutOrStdout(), info, opts)
		return nil
	case "json":
		return renderVersionJSON(cmd.OutOrStdout(), info, opts)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderVersionPretty(out io.Writer, info version.Info, opts versionOptions) {
	fmt.Fprintf(out, "mermaidviz %s (%s)\n", version.Colored(), versionTagline)
	if opts.showHash {
		fmt.Fprintf(out, "commit: %s\n", valueOrUnknown(info.GitCommit))
		if info.GitMessage != "" {
			fmt.Fprintf(out, "message: %s\n", info.GitMessage)
		}
	}
	if opts.showDate {
		fmt.Fprintf(out, "built:  %s\n", valueOrUnknown(info.BuildDate))
	}
}

func renderVersionJSON(out io.Writer, info version.Info, opts versionOptions) error {
	if !opts.showHash {
		info.GitCommit, info.GitMessage = "", ""
	}
	if !opts.showDate {
		info.BuildDate = ""
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{Tool: "mermaidviz", Tagline: versionTagline, Info: info})
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
