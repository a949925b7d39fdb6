package mapping

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// IndexFile is the gallery page written into the output directory.
const IndexFile = "index.html"

var galleryTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Mermaid Diagram Index</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; max-width: 1200px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
        h1 { color: #333; border-bottom: 3px solid #007acc; padding-bottom: 10px; }
        .source-section { background: white; margin: 20px 0; padding: 20px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .source-header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 15px; }
        .source-file { font-size: 1.2em; font-weight: bold; color: #007acc; }
        .timestamp { color: #666; font-size: 0.9em; }
        .diagrams-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(300px, 1fr)); gap: 20px; margin-top: 15px; }
        .diagram-card { border: 1px solid #ddd; border-radius: 4px; padding: 10px; background: #fafafa; }
        .diagram-card img { max-width: 100%; height: auto; border-radius: 4px; }
        .diagram-filename { margin-top: 8px; font-size: 0.9em; color: #555; word-break: break-all; }
        .no-diagrams { color: #999; font-style: italic; }
    </style>
</head>
<body>
    <h1>Mermaid Diagram Index</h1>
{{- if not .}}
    <p class="no-diagrams">No diagrams generated yet.</p>
{{- end}}
{{- range .}}
    <div class="source-section">
        <div class="source-header">
            <div class="source-file">{{.Heading}}</div>
            <div class="timestamp">{{.Timestamp}}</div>
        </div>
        <div><strong>Source:</strong> <code>{{.SourceFile}}</code></div>
        {{- if .Images}}
        <div class="diagrams-grid">
            {{- range .Images}}
            <div class="diagram-card">
                <img src="{{.Src}}" alt="{{.Name}}">
                <div class="diagram-filename">{{.Name}}</div>
            </div>
            {{- end}}
        </div>
        {{- else}}
        <p class="no-diagrams">No diagrams found.</p>
        {{- end}}
    </div>
{{- end}}
</body>
</html>
`))

type galleryImage struct {
	Src  string
	Name string
}

type gallerySection struct {
	Heading    string
	Timestamp  string
	SourceFile string
	Images     []galleryImage
}

// WriteIndex renders the gallery for mappings into dir/IndexFile and returns its path.
func WriteIndex(mappings []DiagramMapping, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	sections := make([]gallerySection, 0, len(mappings))
	for _, m := range mappings {
		s := gallerySection{
			Heading:    m.Title,
			Timestamp:  m.Timestamp,
			SourceFile: m.SourceFile,
		}
		if s.Heading == "" {
			s.Heading = filepath.Base(m.SourceFile)
		}
		for _, f := range m.DiagramFiles {
			s.Images = append(s.Images, galleryImage{Src: imageSrc(dir, f), Name: filepath.Base(f)})
		}
		sections = append(sections, s)
	}

	var buf bytes.Buffer
	if err := galleryTmpl.Execute(&buf, sections); err != nil {
		return "", fmt.Errorf("failed to render gallery: %w", err)
	}
	path := filepath.Join(dir, IndexFile)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write index file %s: %w", path, err)
	}
	return path, nil
}

// imageSrc links file relative to the gallery directory; files outside it fall back to their name.
func imageSrc(dir, file string) string {
	if !filepath.IsAbs(file) {
		return filepath.ToSlash(file)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(file)
	}
	rel, err := filepath.Rel(absDir, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}
