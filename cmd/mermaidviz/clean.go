package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mermaidviz/internal/config"
	"mermaidviz/internal/driver"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove generated files from the output directory",
	Long: "Remove the files (not subdirectories) in the output directory after confirmation.\n" +
		"With --cache the extraction disk cache is dropped as well.",
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	addCleanFlags(cleanCmd)
}

func addCleanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir, "directory to clean")
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation")
	cmd.Flags().Bool("cache", false, "also drop the extraction disk cache (see generate --disk-cache)")
}

func runClean(cmd *cobra.Command, _ []string) error {
	dir, err := resolveOutputDir(cmd)
	if err != nil {
		return err
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	dropCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}

	out := cmd.OutOrStdout()
	if dropCache {
		if err := dropDiskCache(out); err != nil {
			return err
		}
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "output directory not found: %s\n", dir)
			return nil
		}
		return fmt.Errorf("failed to stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}

	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "nothing to clean in %s\n", dir)
		return nil
	}
	if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("remove %d file(s) from %s?", len(files), dir)) {
		fmt.Fprintln(out, "aborted")
		return nil
	}

	removed, err := removeFiles(files)
	fmt.Fprintf(out, "removed %d file(s)\n", removed)
	return err
}

// dropDiskCache empties the cache generate --disk-cache writes to.
func dropDiskCache(out io.Writer) error {
	cache, err := driver.OpenDiskCache(diskCacheApp)
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop disk cache %s: %w", cache.Dir(), err)
	}
	fmt.Fprintf(out, "dropped extraction cache %s\n", cache.Dir())
	return nil
}

// resolveOutputDir prefers --output-dir, then the manifest, then the default.
func resolveOutputDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return "", fmt.Errorf("failed to get output-dir flag: %w", err)
	}
	if cmd.Flags().Changed("output-dir") {
		return dir, nil
	}
	manifest, ok, err := config.Discover(".")
	if err != nil {
		return "", err
	}
	if ok {
		return manifest.OutputDir(), nil
	}
	return dir, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// removeFiles deletes every file it can and reports the first failure.
func removeFiles(files []string) (int, error) {
	removed := 0
	var firstErr error
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove %q: %w", f, err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
