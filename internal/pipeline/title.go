package pipeline

import (
	"mermaidviz/internal/mapping"
	"mermaidviz/internal/source"
)

// documentTitle reads the front matter title of a loaded document.
func documentTitle(sources *source.FileSet, path string) string {
	id, ok := sources.GetLatest(path)
	if !ok {
		return ""
	}
	return mapping.DocumentTitle(sources.Get(id).Content)
}
