package source

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32 // просто ID документа
	// FileFlags encodes metadata about a loaded document.
	FileFlags uint8
)

const (
	// FileVirtual indicates the document was added from memory (test, stdin, gist).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single Markdown document.
type File struct {
	Path    string // absolute, cleaned; virtual files keep their name
	Content []byte
	LineIdx []uint32 // byte offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}
