package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	// ErrPathNotFound reports a missing input path.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotDirectory reports a discovery root that is not a directory.
	ErrNotDirectory = errors.New("path is not a directory")
	// ErrNotMarkdown reports a single input file without a Markdown extension.
	ErrNotMarkdown = errors.New("file is not a markdown file")
)

// IsMarkdown reports whether path has a .md or .markdown extension (any case).
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// FindMarkdownFiles lists Markdown files under dir, sorted and deduplicated.
// With recursive=false only the top level of dir is searched.
func FindMarkdownFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrPathNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsMarkdown(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	// Сортируем для детерминированного порядка
	slices.Sort(files)
	return slices.Compact(files), nil
}

// MarkdownFilesFromPath accepts a single Markdown file or a directory to search.
func MarkdownFilesFromPath(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrPathNotFound)
		}
		return nil, err
	}
	switch {
	case info.Mode().IsRegular():
		if !IsMarkdown(path) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotMarkdown)
		}
		return []string{path}, nil
	case info.IsDir():
		return FindMarkdownFiles(path, recursive)
	default:
		return nil, fmt.Errorf("%s: path is neither a file nor a directory", path)
	}
}

// ProjectName names the directory levelsUp levels above path.
// /work/MyProject/docs/file.md with levelsUp=2 gives "MyProject".
// When the walk reaches the filesystem root the immediate parent's name is used.
func ProjectName(path string, levelsUp int) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	parent := abs
	for range max(levelsUp, 0) {
		next := filepath.Dir(parent)
		if next == parent {
			return filepath.Base(filepath.Dir(abs))
		}
		parent = next
	}
	name := filepath.Base(parent)
	if name == string(filepath.Separator) || name == "." || name == "" {
		return filepath.Base(filepath.Dir(abs))
	}
	return name
}
