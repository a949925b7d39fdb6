package mapping

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
)

type frontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// DocumentTitle returns the title declared in the document's front matter, or "".
// Documents without front matter or with a malformed one have no title.
func DocumentTitle(content []byte) string {
	var meta frontMatter
	if _, err := frontmatter.Parse(bytes.NewReader(content), &meta); err != nil {
		return ""
	}
	return strings.TrimSpace(meta.Title)
}
