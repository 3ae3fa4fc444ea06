// Package prompt renders the instruction sent to a comment generation backend.
package prompt

import (
	"fmt"
	"strings"

	"javadocgen/internal/domain/valueobject"
)

const instructions = "The doc comment should describe what the %s does. " +
	"Only output the doc comment for the following java code, wrapped with /** ... */. " +
	"Do not output the code or any explanation."

// Build renders the prompt for one declaration. The declaration text is
// reassembled from its signature and body excerpt so the prompt stays bounded.
func Build(ctx valueobject.DeclarationContext) string {
	noun := kindNoun(ctx.Kind)

	var sb strings.Builder
	sb.WriteString("Add a detailed doc comment to the following java ")
	sb.WriteString(noun)
	if ctx.EnclosingName != "" {
		sb.WriteString(" declared in ")
		sb.WriteString(ctx.EnclosingName)
	}
	sb.WriteString(":\n")
	sb.WriteString(Declaration(ctx))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(instructions, noun))
	if ctx.Truncated {
		sb.WriteString(" The body was shortened; lines were omitted where it ends with ...")
	}
	return sb.String()
}

// Declaration reassembles a readable declaration from ctx.
func Declaration(ctx valueobject.DeclarationContext) string {
	if ctx.BodyExcerpt == "" {
		return ctx.Signature + terminator(ctx.Kind)
	}
	return ctx.Signature + " " + ctx.BodyExcerpt
}

func terminator(kind valueobject.DeclarationKind) string {
	if kind == valueobject.KindMethod {
		return ";"
	}
	return ""
}

func kindNoun(kind valueobject.DeclarationKind) string {
	switch kind {
	case valueobject.KindMethod, valueobject.KindConstructor,
		valueobject.KindClass, valueobject.KindInterface, valueobject.KindEnum:
		return string(kind)
	default:
		return "declaration"
	}
}
