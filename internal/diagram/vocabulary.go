package diagram

import "strings"

// Unknown is the type of a block with no usable declaration line.
const Unknown = "unknown"

// GenericPrefix is the filename prefix for types outside the vocabulary.
const GenericPrefix = "diagram"

// Kind is one row of the diagram vocabulary.
type Kind struct {
	Keyword string // declaration prefix, case-sensitive
	Label   string // value stored in Record.DiagramType
	Prefix  string // short filename mnemonic
}

// Vocabulary is ordered: the first matching keyword wins.
var Vocabulary = []Kind{
	{Keyword: "flowchart", Label: "flowchart", Prefix: "graph"},
	{Keyword: "graph", Label: "graph", Prefix: "graph"},
	{Keyword: "sequenceDiagram", Label: "sequenceDiagram", Prefix: "seq"},
	{Keyword: "gantt", Label: "gantt", Prefix: "gantt"},
	{Keyword: "classDiagram", Label: "classDiagram", Prefix: "class"},
	{Keyword: "stateDiagram", Label: "stateDiagram", Prefix: "state"},
	{Keyword: "erDiagram", Label: "erDiagram", Prefix: "er"},
	{Keyword: "journey", Label: "journey", Prefix: "journey"},
	{Keyword: "pie", Label: "pie", Prefix: "pie"},
	{Keyword: "gitGraph", Label: "gitGraph", Prefix: "git"},
	{Keyword: "mindmap", Label: "mindmap", Prefix: "mind"},
	{Keyword: "timeline", Label: "timeline", Prefix: "time"},
	{Keyword: "quadrantChart", Label: "quadrantChart", Prefix: "quad"},
	{Keyword: "requirementDiagram", Label: "requirementDiagram", Prefix: "req"},
	{Keyword: "C4Context", Label: "c4Diagram", Prefix: "c4"},
}

// Match returns the first vocabulary row whose keyword prefixes line.
func Match(line string) (Kind, bool) {
	for _, k := range Vocabulary {
		if strings.HasPrefix(line, k.Keyword) {
			return k, true
		}
	}
	return Kind{}, false
}

// LookupLabel finds the vocabulary row for a stored diagram type.
func LookupLabel(label string) (Kind, bool) {
	for _, k := range Vocabulary {
		if k.Label == label {
			return k, true
		}
	}
	return Kind{}, false
}

// PrefixFor maps a diagram type to its filename prefix, GenericPrefix when unknown.
func PrefixFor(diagramType string) string {
	if k, ok := LookupLabel(diagramType); ok {
		return k.Prefix
	}
	return GenericPrefix
}
