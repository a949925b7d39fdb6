package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"unicode/utf8"

	"fortio.org/safecast"
)

// FileSet manages a collection of loaded Markdown documents.
// It is not safe for concurrent Add/Load; load everything first, then read concurrently.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a document from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a document with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	// Всегда обновляем индекс на последнюю версию документа
	fileSet.index[path] = id
	return id
}

// Load reads a document from disk via ReadFile and registers it.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	f, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(f.Path, f.Content, f.Flags), nil
}

// AddVirtual adds an in-memory document with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	flags := FileVirtual
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(name, content, flags)
}

// Get returns the document for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetLatest returns the latest document ID registered for path.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[path]
	return id, ok
}

// Len returns the number of registered documents (all versions).
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// ReadFile loads a single document from disk without registering it anywhere.
// The path is resolved to an absolute, cleaned form; BOM and CRLF are normalized.
// Failures are *LoadError values classified as ErrNotFound, ErrNotFile or ErrDecode.
func ReadFile(path string) (*File, error) {
	abs, err := AbsolutePath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrNotFound, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &LoadError{Path: abs, Kind: ErrNotFound, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{Path: abs, Kind: ErrNotFile}
	}
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(abs)
	if err != nil {
		// EACCES и прочие ошибки чтения считаем "не найден": вызывающему важен только вид ошибки
		return nil, &LoadError{Path: abs, Kind: ErrNotFound, Err: err}
	}

	content, hadBOM := removeBOM(content)
	if !utf8.Valid(content) {
		return nil, &LoadError{Path: abs, Kind: ErrDecode}
	}
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return &File{
		Path:    abs,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}, nil
}

// Text returns the document content as a string.
func (f *File) Text() string {
	return string(f.Content)
}

// Lines returns the document split into lines (see SplitLines).
func (f *File) Lines() []string {
	return SplitLines(string(f.Content))
}

// LineCount returns the number of lines; a trailing newline does not add a line.
func (f *File) LineCount() int {
	n := len(f.LineIdx)
	if len(f.Content) == 0 {
		return 0
	}
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// GetLine возвращает строку с заданным номером (1-based).
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	var start, end uint32
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	return string(f.Content[start:end])
}
