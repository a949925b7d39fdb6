package naming

import (
	"fmt"
	"path/filepath"
)

// ResolveCollisions suffixes repeated names in one pass: the Nth occurrence
// (N >= 2) of a name gets "_N" before its extension. The input is not modified.
func ResolveCollisions(names []string) []string {
	counts := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		counts[name]++
		n := counts[name]
		if n == 1 {
			out[i] = name
			continue
		}
		ext := filepath.Ext(name)
		out[i] = fmt.Sprintf("%s_%d%s", name[:len(name)-len(ext)], n, ext)
	}
	return out
}
