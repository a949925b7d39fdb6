package diagram

import (
	"regexp"
	"strings"
)

// HeaderLookback bounds how many lines above a fence are searched for a header.
const HeaderLookback = 10

var (
	bracketRe     = regexp.MustCompile(`\[([^\]]+)\]`)
	quotedRe      = regexp.MustCompile(`"([^"]+)"`)
	participantRe = regexp.MustCompile(`(?i)\bparticipant\s+(\w+)`)
	pieTitleRe    = regexp.MustCompile(`(?i)\btitle\s+(.+)$`)
	classNameRe   = regexp.MustCompile(`\bclass\s+(\w+)|^(\w+)\s*[:{]`)
	erEntityRe    = regexp.MustCompile(`^([A-Z][A-Z0-9_-]*)\s+[|}]`)
)

// PrecedingHeader returns the Markdown header text directly above the fence at fenceLine
// (0-based), or "" when none is found. Blank lines are skipped; any other line stops the search.
func PrecedingHeader(lines []string, fenceLine int) string {
	if fenceLine > len(lines) {
		fenceLine = len(lines)
	}
	stop := max(fenceLine-HeaderLookback, 0)
	for i := fenceLine - 1; i >= stop; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			return ""
		}
		return strings.TrimSpace(strings.TrimLeft(line, "#"))
	}
	return ""
}

// Title mines a descriptive title from diagram content, "" when nothing matches.
func Title(content, diagramType string) string {
	lines := titleLines(content)
	if len(lines) == 0 {
		return ""
	}

	var title string
	switch diagramType {
	case "flowchart", "graph":
		title = firstSubmatch(bracketRe, lines)
	case "sequenceDiagram":
		title = titleDirective(lines)
		if title == "" {
			title = firstSubmatch(participantRe, lines)
		}
	case "gantt":
		title = titleDirective(lines)
	case "pie":
		title = firstSubmatch(pieTitleRe, lines)
	case "classDiagram":
		title = firstSubmatch(classNameRe, lines)
	case "erDiagram":
		title = firstSubmatch(erEntityRe, lines)
	}
	if title != "" {
		return title
	}

	if title = firstSubmatch(bracketRe, lines); title != "" {
		return title
	}
	return firstSubmatch(quotedRe, lines)
}

// declarationTypes have a declaration line that carries no title text.
var declarationTypes = map[string]bool{
	"flowchart":       true,
	"graph":           true,
	"sequenceDiagram": true,
	"gantt":           true,
	"classDiagram":    true,
	"stateDiagram":    true,
	"erDiagram":       true,
}

// titleLines returns the trimmed non-blank lines of content. For declarationTypes
// the first one (the declaration) is dropped entirely; other types keep it, so
// "pie title X" still yields X.
func titleLines(content string) []string {
	label := Classify(content)

	var out []string
	declSeen := false
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if !declSeen {
			declSeen = true
			if declarationTypes[label] {
				continue
			}
		}
		out = append(out, stripped)
	}
	return out
}

// titleDirective handles "title X" and "title: X" lines.
func titleDirective(lines []string) string {
	for _, line := range lines {
		rest, ok := strings.CutPrefix(line, "title")
		if !ok {
			continue
		}
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != ':' {
			continue
		}
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		if rest != "" {
			return rest
		}
	}
	return ""
}

// firstSubmatch returns the first non-empty capture group of the first matching line.
func firstSubmatch(re *regexp.Regexp, lines []string) string {
	for _, line := range lines {
		m := re.FindStringSubmatch(line)
		for _, g := range m[min(1, len(m)):] {
			if g = strings.TrimSpace(g); g != "" {
				return g
			}
		}
	}
	return ""
}
