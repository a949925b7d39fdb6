package diagram

import (
	"strings"
	"testing"
)

func TestPrecedingHeader(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		fence int
		want  string
	}{
		{"direct", "# Overview\n```mermaid", 1, "Overview"},
		{"blank lines skipped", "## Login Flow\n\n\n```mermaid", 3, "Login Flow"},
		{"paragraph stops search", "# Header\nSome text.\n```mermaid", 2, ""},
		{"marker only", "###   \n```mermaid", 1, ""},
		{"indented header", "   # Indented\n```mermaid", 1, "Indented"},
		{"fence at top", "```mermaid", 0, ""},
		{"within window", "# Edge" + strings.Repeat("\n", 10) + "```mermaid", 10, "Edge"},
		{"beyond window", "# Far" + strings.Repeat("\n", 11) + "```mermaid", 11, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.Split(tt.doc, "\n")
			if got := PrecedingHeader(lines, tt.fence); got != tt.want {
				t.Errorf("PrecedingHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"flowchart bracket", "flowchart TD\n    A[Start Process] --> B", "Start Process"},
		{"graph without label", "graph LR\n A --> B", ""},
		{"sequence title", "sequenceDiagram\n  title: Login Sequence\n  Alice->>Bob: hi", "Login Sequence"},
		{"sequence title without colon", "sequenceDiagram\n  title Checkout\n", "Checkout"},
		{"sequence participant", "sequenceDiagram\n  participant Alice as A\n  participant Bob", "Alice"},
		{"sequence participant any case", "sequenceDiagram\n  Participant Carol", "Carol"},
		{"sequence titled word is not a directive", "sequenceDiagram\n  titled Bob\n  participant Dan", "Dan"},
		{"gantt title", "gantt\n    title Project Timeline\n    dateFormat YYYY-MM-DD", "Project Timeline"},
		{"gantt title directive is case-sensitive", "gantt\n    Title Plan\n", ""},
		{"pie inline title", "pie title Pets adopted\n  \"Dogs\" : 386", "Pets adopted"},
		{"pie title on its own line", "pie\n  title Distribution\n  \"A\" : 1", "Distribution"},
		{"class keyword", "classDiagram\n  class Animal\n  Animal <|-- Duck", "Animal"},
		{"class shaped line", "classDiagram\n  Vehicle : +int wheels", "Vehicle"},
		{"er entity", "erDiagram\n    CUSTOMER ||--o{ ORDER : places", "CUSTOMER"},
		{"er lowercase ignored falls back to quotes", "erDiagram\n  customer ||--o{ order : \"places\"", "places"},
		{"fallback bracket for unknown type", "journey\n  section Go[Shopping]", "Shopping"},
		{"fallback quote", "xyzChart\n  label \"Quarterly\"", "Quarterly"},
		{"bracket preferred over earlier quote", "xyzChart\n  \"first\"\n  [second]", "second"},
		{"declaration only", "flowchart TD", ""},
		{"graph one-liner", "graph LR; A[Start]-->B", ""},
		{"sequence one-liner", "sequenceDiagram participant Eve", ""},
		{"blank", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.content, Classify(tt.content))
			if got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
