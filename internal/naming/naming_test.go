package naming

import (
	"errors"
	"strings"
	"testing"

	"mermaidviz/internal/diagram"
)

func TestPositionalName(t *testing.T) {
	if got := PositionalName("architecture", 0, "flowchart", "png"); got != "architecture_0_flowchart.png" {
		t.Errorf("PositionalName = %q", got)
	}
	rec := &diagram.Record{SourceFile: "/docs/api.flow.md", Index: 3, DiagramType: "sequenceDiagram"}
	if got := PositionalFor(rec, "svg"); got != "api.flow_3_sequenceDiagram.svg" {
		t.Errorf("PositionalFor = %q", got)
	}
}

func TestDescriptiveName(t *testing.T) {
	tests := []struct {
		name string
		rec  diagram.Record
		want string
	}{
		{
			name: "header wins",
			rec:  diagram.Record{DiagramType: "flowchart", PrecedingHeader: "User Authentication", DiagramTitle: "Start"},
			want: "graph_user_authentication.png",
		},
		{
			name: "title when no header",
			rec:  diagram.Record{DiagramType: "sequenceDiagram", DiagramTitle: "Login Flow"},
			want: "seq_login_flow.png",
		},
		{
			name: "index fallback",
			rec:  diagram.Record{DiagramType: "pie", Index: 4},
			want: "pie_4.png",
		},
		{
			name: "unsanitizable header falls back",
			rec:  diagram.Record{DiagramType: "erDiagram", Index: 1, PrecedingHeader: "!!!"},
			want: "er_1.png",
		},
		{
			name: "unknown type uses generic prefix",
			rec:  diagram.Record{DiagramType: "xyzChart", DiagramTitle: "Q3"},
			want: "diagram_q3.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DescriptiveName(&tt.rec, "png")
			if err != nil {
				t.Fatalf("DescriptiveName: %v", err)
			}
			if got != tt.want {
				t.Errorf("DescriptiveName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeriveRequiresRecord(t *testing.T) {
	if _, err := Derive(Descriptive, nil, "png"); !errors.Is(err, ErrMissingRecord) {
		t.Errorf("expected ErrMissingRecord, got %v", err)
	}
	rec := &diagram.Record{SourceFile: "/x/architecture.md", DiagramType: "flowchart"}
	got, err := Derive(Positional, rec, "png")
	if err != nil || got != "architecture_0_flowchart.png" {
		t.Errorf("Derive(Positional) = %q, %v", got, err)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"User Authentication", "user_authentication"},
		{"  API -- v2 / Overview  ", "api_v2_overview"},
		{"__Already-Clean__", "already-clean"},
		{"a - b", "a_b"},
		{"Ünïcode Größe", "ünïcode_größe"},
		{"Café", "café"},
		{"100% done!", "100_done"},
		{"", ""},
		{"***", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeTruncates(t *testing.T) {
	long := strings.Repeat("abcd ", 20)
	got := Sanitize(long)
	if n := len([]rune(got)); n > MaxBaseLength {
		t.Fatalf("len = %d, want <= %d", n, MaxBaseLength)
	}
	if strings.HasSuffix(got, "_") || strings.HasSuffix(got, "-") {
		t.Errorf("truncated result %q ends with separator", got)
	}
	// 50 runes would end on '_' after "abcd_" * 10, so it is trimmed to 49
	if len(got) != 49 {
		t.Errorf("len = %d, want 49", len(got))
	}
}

func TestResolveCollisions(t *testing.T) {
	in := []string{"seq_auth.png", "seq_auth.png", "graph_flow.svg", "seq_auth.png"}
	want := []string{"seq_auth.png", "seq_auth_2.png", "graph_flow.svg", "seq_auth_3.png"}

	got := ResolveCollisions(in)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ResolveCollisions[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if in[1] != "seq_auth.png" {
		t.Error("input slice was modified")
	}

	again := ResolveCollisions(in)
	for i := range got {
		if again[i] != got[i] {
			t.Errorf("not deterministic at %d: %q vs %q", i, again[i], got[i])
		}
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy("Descriptive"); err != nil || s != Descriptive {
		t.Errorf("ParseStrategy(Descriptive) = %v, %v", s, err)
	}
	if s, err := ParseStrategy("positional"); err != nil || s != Positional {
		t.Errorf("ParseStrategy(positional) = %v, %v", s, err)
	}
	if _, err := ParseStrategy("random"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
