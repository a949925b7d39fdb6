package diagram

import "strings"

// Classify returns the diagram type declared by content.
// Unrecognized declarations pass through as their first token; blank content is Unknown.
func Classify(content string) string {
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if k, ok := Match(stripped); ok {
			return k.Label
		}
		return strings.Fields(stripped)[0]
	}
	return Unknown
}
