package valueobject

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Common language names as constants for consistency.
const (
	LanguageJava    = "Java"
	LanguageUnknown = "Unknown"
)

// Language identifies the grammar a source file is parsed with.
type Language struct {
	name       string
	extensions []string
}

// NewLanguage creates a new Language value object with validation.
func NewLanguage(name string, extensions ...string) (Language, error) {
	normalizedName := strings.TrimSpace(name)
	if normalizedName == "" {
		return Language{}, errors.New("language name cannot be empty")
	}

	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			return Language{}, fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
		normalized = append(normalized, ext)
	}

	return Language{name: normalizedName, extensions: normalized}, nil
}

// Java returns the only language the documentation pipeline is built against.
func Java() Language {
	return Language{name: LanguageJava, extensions: []string{".java"}}
}

// Name returns the language name.
func (l Language) Name() string {
	return l.name
}

// Extensions returns a copy of the file extensions associated with the language.
func (l Language) Extensions() []string {
	return slices.Clone(l.extensions)
}

// MatchesPath reports whether path carries one of the language's extensions.
func (l Language) MatchesPath(path string) bool {
	return slices.Contains(l.extensions, strings.ToLower(filepath.Ext(path)))
}

// Equal compares two languages by name, case-insensitively.
func (l Language) Equal(other Language) bool {
	return strings.EqualFold(l.name, other.name)
}

// String returns the language name.
func (l Language) String() string {
	return l.name
}
