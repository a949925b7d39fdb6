package diagram

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"flowchart TD\n A --> B", "flowchart"},
		{"flowchart-elk LR", "flowchart"},
		{"graph LR", "graph"},
		{"\n\n  sequenceDiagram\n  Alice->>Bob: hi", "sequenceDiagram"},
		{"gantt", "gantt"},
		{"classDiagram", "classDiagram"},
		{"stateDiagram-v2", "stateDiagram"},
		{"erDiagram", "erDiagram"},
		{"journey", "journey"},
		{"pie title Pets", "pie"},
		{"gitGraph", "gitGraph"},
		{"mindmap", "mindmap"},
		{"timeline", "timeline"},
		{"quadrantChart", "quadrantChart"},
		{"requirementDiagram", "requirementDiagram"},
		{"C4Context", "c4Diagram"},
		{"xyzChart\n  a b c", "xyzChart"},
		{"Flowchart TD", "Flowchart"},
		{"   \n\t\n", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.content); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}

func TestPrefixFor(t *testing.T) {
	tests := map[string]string{
		"flowchart":       "graph",
		"graph":           "graph",
		"sequenceDiagram": "seq",
		"c4Diagram":       "c4",
		"C4Context":       GenericPrefix,
		"xyzChart":        GenericPrefix,
		Unknown:           GenericPrefix,
	}
	for typ, want := range tests {
		if got := PrefixFor(typ); got != want {
			t.Errorf("PrefixFor(%q) = %q, want %q", typ, got, want)
		}
	}
}

func TestVocabularyPrefixesAreShort(t *testing.T) {
	seen := make(map[string]bool)
	for _, k := range Vocabulary {
		if n := len(k.Prefix); n < 2 || n > 7 {
			t.Errorf("prefix %q for %s has length %d", k.Prefix, k.Label, n)
		}
		if seen[k.Label] {
			t.Errorf("duplicate label %q", k.Label)
		}
		seen[k.Label] = true
	}
}
