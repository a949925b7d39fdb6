// Package fence locates mermaid code fences in Markdown text.
package fence

import (
	"regexp"
	"strings"

	"mermaidviz/internal/source"
)

// Marker is the fence info string that marks a diagram block. Matched case-insensitively.
const Marker = "mermaid"

var openerRe = regexp.MustCompile("(?i)^(`{3,}|~{3,})[ \t]*" + Marker + "$")

// Block is one non-blank mermaid block.
type Block struct {
	Content   string // verbatim body between the fences
	StartLine int    // 1-based, line after the opener
	EndLine   int    // 1-based, closing fence or last line of the document
	FenceLine int    // 0-based index of the opening fence line
}

// Span is a mermaid fenced region, including blank ones.
// CloseLine is the 0-based index of the closing fence, or -1 when the block runs to EOF.
type Span struct {
	Block
	CloseLine int
	Blank     bool
}

// Scan returns the non-blank mermaid blocks of text in document order.
func Scan(text string) []Block {
	spans := Spans(text)
	blocks := make([]Block, 0, len(spans))
	for _, sp := range spans {
		if sp.Blank {
			continue
		}
		blocks = append(blocks, sp.Block)
	}
	return blocks
}

// Spans returns every mermaid fenced region of text, blank ones included.
func Spans(text string) []Span {
	return scanLines(source.SplitLines(text))
}

func scanLines(lines []string) []Span {
	var spans []Span
	i := 0
	for i < len(lines) {
		fenceChar, fenceLen, ok := opener(lines[i])
		if !ok {
			i++
			continue
		}

		open := i
		body := make([]string, 0, 8)
		closeAt := -1
		// внутри блока открывающие маркеры не распознаются
		for i++; i < len(lines); i++ {
			if closes(lines[i], fenceChar, fenceLen) {
				closeAt = i
				break
			}
			body = append(body, lines[i])
		}

		content := strings.Join(body, "\n")
		end := closeAt + 1
		if closeAt < 0 {
			end = len(lines)
		}
		spans = append(spans, Span{
			Block: Block{
				Content:   content,
				StartLine: open + 2,
				EndLine:   end,
				FenceLine: open,
			},
			CloseLine: closeAt,
			Blank:     strings.TrimSpace(content) == "",
		})
		// resume after the closer; for an unterminated block i is already len(lines)
		i++
	}
	return spans
}

func opener(line string) (byte, int, bool) {
	m := openerRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, false
	}
	return m[1][0], len(m[1]), true
}

// closes reports whether line is a closer for the open fence. The closer starts in
// column zero; only trailing whitespace is allowed.
func closes(line string, fenceChar byte, fenceLen int) bool {
	t := strings.TrimRight(line, " \t\r")
	if len(t) < fenceLen {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != fenceChar {
			return false
		}
	}
	return true
}
