package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing or unreadable document.
	ErrNotFound = errors.New("document not found or unreadable")
	// ErrNotFile reports a path that exists but is not a regular file.
	ErrNotFile = errors.New("path is not a regular file")
	// ErrDecode reports content that is not valid UTF-8.
	ErrDecode = errors.New("document is not valid UTF-8")
)

// LoadError ties a load failure to the offending path.
// Kind is one of ErrNotFound, ErrNotFile or ErrDecode; Err is the underlying cause (may be nil).
type LoadError struct {
	Path string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is/errors.As.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
