package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// чтение документов
	IOInfo         Code = 1000
	IONotFound     Code = 1001
	IONotFile      Code = 1002
	IODecode       Code = 1003
	IOGistFetch    Code = 1004
	IODiscoverFail Code = 1005

	// извлечение и имена
	ExtInfo          Code = 2000
	ExtNoDiagrams    Code = 2001
	ExtNameCollision Code = 2002
	ExtCacheFailure  Code = 2003

	// рендеринг
	RndInfo        Code = 3000
	RndFailed      Code = 3001
	RndBadSyntax   Code = 3002
	RndTooLarge    Code = 3003
	RndRateLimited Code = 3004
	RndTimeout     Code = 3005

	// запись результатов
	OutInfo          Code = 4000
	OutMappingWrite  Code = 4001
	OutGalleryWrite  Code = 4002
	OutLinkedWrite   Code = 4003
	OutDirCreateFail Code = 4004
)

var codeDescription = map[Code]string{
	UnknownCode:      "Unknown error",
	IOInfo:           "I/O information",
	IONotFound:       "Document not found or unreadable",
	IONotFile:        "Path is not a regular file",
	IODecode:         "Document is not valid UTF-8",
	IOGistFetch:      "Failed to fetch gist",
	IODiscoverFail:   "Failed to discover Markdown files",
	ExtInfo:          "Extraction information",
	ExtNoDiagrams:    "No mermaid diagrams found",
	ExtNameCollision: "Output name collision resolved with suffix",
	ExtCacheFailure:  "Extraction cache unavailable",
	RndInfo:          "Rendering information",
	RndFailed:        "Diagram rendering failed",
	RndBadSyntax:     "Renderer rejected diagram syntax",
	RndTooLarge:      "Diagram too large for renderer",
	RndRateLimited:   "Renderer rate limit exceeded",
	RndTimeout:       "Renderer timed out",
	OutInfo:          "Output information",
	OutMappingWrite:  "Failed to write diagram mappings",
	OutGalleryWrite:  "Failed to write gallery index",
	OutLinkedWrite:   "Failed to write linked markdown",
	OutDirCreateFail: "Failed to create output directory",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EXT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("OUT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
