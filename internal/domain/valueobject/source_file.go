package valueobject

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"javadocgen/internal/domain/errors/domain"
)

// StdinPath is the display path used for sources read from standard input.
const StdinPath = "<stdin>"

// SourceFile is the immutable text every offset in a run is computed against.
// Patched output is always a new buffer; the content of a SourceFile never changes.
type SourceFile struct {
	path     string
	content  []byte
	language Language
}

// NewSourceFile creates a SourceFile from a private copy of content.
func NewSourceFile(path string, content []byte) (*SourceFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: source path cannot be empty", domain.ErrInvalidInput)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptySource, path)
	}
	if len(content) > int(MaxUint32) {
		return nil, fmt.Errorf("%w: %s exceeds the maximum addressable size", domain.ErrInvalidInput, path)
	}

	lang := Java()
	if path != StdinPath && !lang.MatchesPath(path) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedInput, path)
	}

	return &SourceFile{
		path:     path,
		content:  slices.Clone(content),
		language: lang,
	}, nil
}

// Path returns the path the source was read from.
func (f *SourceFile) Path() string {
	return f.path
}

// Language returns the language of the source.
func (f *SourceFile) Language() Language {
	return f.language
}

// Content returns the original bytes. Callers must not modify the returned slice.
func (f *SourceFile) Content() []byte {
	return f.content
}

// Len returns the size of the source in bytes.
func (f *SourceFile) Len() uint32 {
	return ClampToUint32(len(f.content))
}

// Slice returns the text of the half-open byte range [start, end).
func (f *SourceFile) Slice(start, end uint32) (string, error) {
	if start > end || int64(end) > int64(len(f.content)) {
		return "", errors.New("byte range outside the source")
	}
	return string(f.content[start:end]), nil
}
