package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mermaidviz/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "mermaidviz",
	Short: "Extract and render mermaid diagrams from Markdown",
	Long: `mermaidviz finds mermaid code blocks in Markdown documents, classifies them,
names them and renders them to PNG or SVG through mermaid.ink or a local mermaid-cli.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareRoot,
}

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(versionCmd)

	addPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addPersistentFlags registers the global flags on root.
func addPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")
	root.PersistentFlags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	root.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr, .ndjson for JSON lines)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|info|debug)")
	root.PersistentFlags().BoolP("verbose", "v", false, "debug tracing to stderr")
	root.PersistentFlags().String("env-file", ".env", "dotenv file with GITHUB_TOKEN and friends")
}

// prepareRoot loads the dotenv file and applies --color before any command runs.
func prepareRoot(cmd *cobra.Command, _ []string) error {
	envFile, err := cmd.Root().PersistentFlags().GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile != "" {
		// переменные окружения процесса важнее файла
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
