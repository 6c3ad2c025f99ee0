package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"fortio.org/safecast"
)

// FileSet owns loaded sources and resolves spans into line/column pairs.
// Workers of one scan share a FileSet, so every method is safe for
// concurrent use.
type FileSet struct {
	mu    sync.RWMutex
	files []*File
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Add registers already normalized content under a fresh FileID. Adding the
// same path twice yields two independent files.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	f := &File{
		Path:    normalizePath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	f.ID = FileID(n)
	fileSet.files = append(fileSet.files, f)
	return f.ID
}

// AddVirtual adds in-memory content (tests, stdin) flagged as FileVirtual.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Load reads a Python source for rewriting: BOM and CRLF are stripped,
// anything else is kept byte for byte.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	content = normalize(content, &flags, false)
	return fileSet.Add(path, content, flags), nil
}

// LoadText is Load for text matched line by line: the content must decode
// as UTF-8 and is additionally brought to NFC.
func (fileSet *FileSet) LoadText(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if !validUTF8(trimBOM(content)) {
		return 0, fmt.Errorf("%s: %w", path, ErrInvalidUTF8)
	}
	var flags FileFlags
	content = normalize(content, &flags, true)
	return fileSet.Add(path, content, flags), nil
}

// ReadText loads one file the way LoadText does without registering it
// anywhere; the result lives only as long as the caller keeps it.
func ReadText(path string) (*File, error) {
	fs := NewFileSet()
	id, err := fs.LoadText(path)
	if err != nil {
		return nil, err
	}
	return fs.Get(id), nil
}

func normalize(content []byte, flags *FileFlags, nfc bool) []byte {
	var changed bool
	if content, changed = removeBOM(content); changed {
		*flags |= FileHadBOM
	}
	if content, changed = normalizeCRLF(content); changed {
		*flags |= FileNormalizedCRLF
	}
	if !nfc {
		return content
	}
	if content, changed = normalizeNFC(content); changed {
		*flags |= FileNormalizedNFC
	}
	return content
}

func trimBOM(content []byte) []byte {
	out, _ := removeBOM(content)
	return out
}

// Get returns nil for an unknown id.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// Resolve converts a span into 1-based line/column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// LineCount returns the number of lines in the file. A trailing newline does not
// open a new line, so "a\nb\n" has two lines and an empty file has none.
func (f *File) LineCount() int {
	if len(f.Content) == 0 {
		return 0
	}
	n := len(f.LineIdx)
	if f.Content[len(f.Content)-1] != '\n' {
		n++
	}
	return n
}

// GetLine возвращает строку n (1-based) без завершающего \n; "" вне файла.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > f.LineCount() {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	if int(n-1) < len(f.LineIdx) {
		return string(f.Content[start:f.LineIdx[n-1]])
	}
	return string(f.Content[start:])
}
