package treesitter

import "time"

// Parser configuration defaults.
const (
	DefaultMaxSourceSize = 10 * 1024 * 1024 // 10MB
	DefaultParserTimeout = 15 * time.Second

	// GrammarVersion names the grammar module the Java parser is built against.
	GrammarVersion = "go-sitter-forest/java"
)
