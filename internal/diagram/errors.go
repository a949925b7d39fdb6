package diagram

import (
	"fmt"

	"mermaidviz/internal/source"
)

// Load failure kinds, shared with the source loader so errors.Is works at either level.
var (
	ErrNotFound = source.ErrNotFound
	ErrNotFile  = source.ErrNotFile
	ErrDecode   = source.ErrDecode
)

// DocumentError reports a document that could not be extracted.
type DocumentError struct {
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
