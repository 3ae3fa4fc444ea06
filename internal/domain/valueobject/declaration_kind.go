package valueobject

import (
	"fmt"
	"strings"
)

// DeclarationKind classifies syntax nodes for documentation purposes.
type DeclarationKind string

const (
	KindClass       DeclarationKind = "class"
	KindInterface   DeclarationKind = "interface"
	KindEnum        DeclarationKind = "enum"
	KindMethod      DeclarationKind = "method"
	KindConstructor DeclarationKind = "constructor"
	KindOther       DeclarationKind = "other"
)

// Java grammar node types that map onto documentable kinds.
const (
	NodeClassDeclaration          = "class_declaration"
	NodeInterfaceDeclaration      = "interface_declaration"
	NodeEnumDeclaration           = "enum_declaration"
	NodeRecordDeclaration         = "record_declaration"
	NodeAnnotationTypeDeclaration = "annotation_type_declaration"
	NodeMethodDeclaration         = "method_declaration"
	NodeConstructorDeclaration    = "constructor_declaration"
	NodeCompactConstructor        = "compact_constructor_declaration"
)

var nodeTypeKinds = map[string]DeclarationKind{
	NodeClassDeclaration:          KindClass,
	NodeRecordDeclaration:         KindClass,
	NodeInterfaceDeclaration:      KindInterface,
	NodeAnnotationTypeDeclaration: KindInterface,
	NodeEnumDeclaration:           KindEnum,
	NodeMethodDeclaration:         KindMethod,
	NodeConstructorDeclaration:    KindConstructor,
	NodeCompactConstructor:        KindConstructor,
}

// KindOfNodeType maps a grammar node type to its declaration kind.
func KindOfNodeType(nodeType string) DeclarationKind {
	if kind, ok := nodeTypeKinds[nodeType]; ok {
		return kind
	}
	return KindOther
}

// ParseDeclarationKind parses a configured kind name. "record" and "annotation"
// are accepted as aliases of the kinds their node types report as.
func ParseDeclarationKind(s string) (DeclarationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class", "record":
		return KindClass, nil
	case "interface", "annotation":
		return KindInterface, nil
	case "enum":
		return KindEnum, nil
	case "method":
		return KindMethod, nil
	case "constructor":
		return KindConstructor, nil
	default:
		return "", fmt.Errorf("unknown declaration kind: %q", s)
	}
}

// DocumentableKinds returns every kind that can receive a doc comment.
func DocumentableKinds() []DeclarationKind {
	return []DeclarationKind{KindClass, KindInterface, KindEnum, KindMethod, KindConstructor}
}

// String returns the kind name.
func (k DeclarationKind) String() string {
	return string(k)
}

// IsDocumentable reports whether the kind can receive a doc comment.
func (k DeclarationKind) IsDocumentable() bool {
	return k != KindOther && k != ""
}

// IsTypeDeclaration reports whether the kind names an enclosing type.
func (k DeclarationKind) IsTypeDeclaration() bool {
	return k == KindClass || k == KindInterface || k == KindEnum
}
