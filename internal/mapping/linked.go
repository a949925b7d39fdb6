package mapping

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mermaidviz/internal/fence"
	"mermaidviz/internal/source"
)

// LinkedPath returns <dir>/<stem>_linked<ext> for a source document.
func LinkedPath(sourcePath string) string {
	dir, base := filepath.Split(sourcePath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_linked"+ext)
}

// ErrVirtualSource is returned for documents that were never read from disk.
var ErrVirtualSource = errors.New("document has no file on disk")

// CreateLinkedMarkdown writes a copy of the loaded document f next to it, with each
// rendered mermaid block replaced by a wiki-style image link. files maps a diagram index (as in
// diagram.Record.Index) to its image path; blocks without an entry stay as they are.
// With inSourceDir the link is the bare file name, otherwise a path relative to the
// document (or absolute when the image is elsewhere).
func CreateLinkedMarkdown(f *source.File, files map[int]string, inSourceDir bool) (string, error) {
	if f.Flags&source.FileVirtual != 0 {
		return "", fmt.Errorf("%w: %s", ErrVirtualSource, f.Path)
	}
	text := f.Text()
	lines := f.Lines()

	out := make([]string, 0, len(lines))
	next := 0 // следующая необработанная строка
	index := 0
	for _, sp := range fence.Spans(text) {
		if sp.Blank {
			continue
		}
		img, ok := files[index]
		index++
		if !ok {
			continue
		}
		end := sp.CloseLine
		if end < 0 {
			end = len(lines) - 1
		}
		out = append(out, lines[next:sp.FenceLine]...)
		out = append(out, "![["+linkTarget(f.Path, img, inSourceDir)+"]]")
		next = end + 1
	}
	out = append(out, lines[next:]...)

	result := strings.Join(out, "\n")
	if strings.HasSuffix(text, "\n") {
		result += "\n"
	}

	path := LinkedPath(f.Path)
	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("failed to write linked markdown %s: %w", path, err)
	}
	return path, nil
}

func linkTarget(sourcePath, image string, inSourceDir bool) string {
	if inSourceDir {
		return filepath.Base(image)
	}
	abs, err := filepath.Abs(image)
	if err != nil {
		return filepath.ToSlash(image)
	}
	rel, err := source.RelativePath(abs, filepath.Dir(sourcePath))
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return rel
}
