// Package mapping persists which image files were produced from which document,
// and builds the outputs derived from that record: the HTML gallery and the
// linked copies of source documents.
package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the mapping file written into the output directory.
const FileName = "diagram_mappings.json"

// ErrNoMappings is returned by Load when the output directory has no mapping file.
var ErrNoMappings = errors.New("mapping file not found")

// DiagramMapping ties a source document to the images rendered from it.
type DiagramMapping struct {
	SourceFile   string   `json:"source_file"`
	DiagramFiles []string `json:"diagram_files"`
	Timestamp    string   `json:"timestamp"` // RFC 3339
	RunID        string   `json:"run_id,omitempty"`
	Title        string   `json:"title,omitempty"`
}

// New builds a mapping stamped with the current time.
func New(sourceFile string, files []string, runID string) DiagramMapping {
	return DiagramMapping{
		SourceFile:   sourceFile,
		DiagramFiles: append([]string(nil), files...),
		Timestamp:    time.Now().Format(time.RFC3339),
		RunID:        runID,
	}
}

// Save writes mappings as an indented JSON array to dir/FileName.
func Save(mappings []DiagramMapping, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if mappings == nil {
		mappings = []DiagramMapping{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mappings); err != nil {
		return fmt.Errorf("failed to encode mappings: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}
	return nil
}

// Load reads dir/FileName.
func Load(dir string) ([]DiagramMapping, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoMappings, path)
		}
		return nil, err
	}
	var mappings []DiagramMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("invalid JSON in mapping file %s: %w", path, err)
	}
	return mappings, nil
}
