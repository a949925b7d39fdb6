package diagram

import (
	"path/filepath"

	"mermaidviz/internal/fence"
	"mermaidviz/internal/source"
)

// Extract loads path and returns its diagrams in document order.
// Failures are *DocumentError values matching ErrNotFound, ErrNotFile or ErrDecode.
func Extract(path string) ([]Record, error) {
	f, err := source.ReadFile(path)
	if err != nil {
		return nil, &DocumentError{Path: path, Err: err}
	}
	return ExtractText(f.Path, f.Text()), nil
}

// ExtractFile builds records from an already loaded document.
// Virtual documents keep their name as SourceFile.
func ExtractFile(f *source.File) []Record {
	if f.Flags&source.FileVirtual != 0 {
		return extractText(f.Path, f.Text())
	}
	return ExtractText(f.Path, f.Text())
}

// ExtractText builds records from text attributed to path. Never fails.
func ExtractText(path, text string) []Record {
	abs := path
	if a, err := source.AbsolutePath(path); err == nil {
		abs = a
	}
	return extractText(abs, text)
}

func extractText(path, text string) []Record {
	blocks := fence.Scan(text)
	if len(blocks) == 0 {
		return nil
	}
	lines := source.SplitLines(text)

	records := make([]Record, 0, len(blocks))
	for i, b := range blocks {
		typ := Classify(b.Content)
		records = append(records, Record{
			Content:         b.Content,
			SourceFile:      path,
			StartLine:       b.StartLine,
			EndLine:         b.EndLine,
			DiagramType:     typ,
			Index:           i,
			PrecedingHeader: PrecedingHeader(lines, b.FenceLine),
			DiagramTitle:    Title(b.Content, typ),
		})
	}
	return records
}

// ExtractFiles extracts every path in order, silently skipping documents that fail to load.
func ExtractFiles(paths []string) []Record {
	var all []Record
	for _, p := range paths {
		recs, err := Extract(p)
		if err != nil {
			continue
		}
		all = append(all, recs...)
	}
	return all
}

// Stem returns the source file name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
