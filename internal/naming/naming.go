// Package naming derives output filenames for extracted diagrams.
package naming

import (
	"errors"
	"fmt"
	"strings"

	"mermaidviz/internal/diagram"
)

// Strategy selects how filenames are built.
type Strategy uint8

const (
	// Positional names files {stem}_{index}_{type}.{format}.
	Positional Strategy = iota
	// Descriptive names files after the mined header or title.
	Descriptive
)

// ErrMissingRecord is returned when descriptive naming is asked to describe nothing.
var ErrMissingRecord = errors.New("descriptive naming requires a diagram record")

func (s Strategy) String() string {
	switch s {
	case Positional:
		return "positional"
	case Descriptive:
		return "descriptive"
	default:
		return fmt.Sprintf("Strategy(%d)", s)
	}
}

// ParseStrategy parses "positional" or "descriptive".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positional", "":
		return Positional, nil
	case "descriptive":
		return Descriptive, nil
	default:
		return Positional, fmt.Errorf("unknown naming strategy %q (want positional|descriptive)", s)
	}
}

// PositionalName formats {stem}_{index}_{type}.{format}.
func PositionalName(stem string, index int, diagramType, format string) string {
	return fmt.Sprintf("%s_%d_%s.%s", stem, index, diagramType, format)
}

// PositionalFor names rec by its source file stem and index.
func PositionalFor(rec *diagram.Record, format string) string {
	return PositionalName(diagram.Stem(rec.SourceFile), rec.Index, rec.DiagramType, format)
}

// TypePrefix returns the filename mnemonic for a diagram type.
func TypePrefix(diagramType string) string {
	return diagram.PrefixFor(diagramType)
}

// DescriptiveName builds {prefix}_{base}.{format} from the header or title,
// falling back to {prefix}_{index}.{format}.
func DescriptiveName(rec *diagram.Record, format string) (string, error) {
	if rec == nil {
		return "", ErrMissingRecord
	}
	prefix := TypePrefix(rec.DiagramType)

	base := rec.PrecedingHeader
	if base == "" {
		base = rec.DiagramTitle
	}
	if s := Sanitize(base); s != "" {
		return fmt.Sprintf("%s_%s.%s", prefix, s, format), nil
	}
	return fmt.Sprintf("%s_%d.%s", prefix, rec.Index, format), nil
}

// Derive names rec with the given strategy.
func Derive(strategy Strategy, rec *diagram.Record, format string) (string, error) {
	switch strategy {
	case Positional:
		if rec == nil {
			return "", ErrMissingRecord
		}
		return PositionalFor(rec, format), nil
	case Descriptive:
		return DescriptiveName(rec, format)
	default:
		return "", fmt.Errorf("unknown naming strategy %v", strategy)
	}
}
