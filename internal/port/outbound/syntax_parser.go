package outbound

import (
	"context"

	"javadocgen/internal/domain/valueobject"
)

// SyntaxParser turns a source file into a concrete syntax tree. Syntax errors
// stay in the tree; an error is returned only when no tree can be built.
type SyntaxParser interface {
	Parse(ctx context.Context, file *valueobject.SourceFile) (*valueobject.ParseTree, error)
}
