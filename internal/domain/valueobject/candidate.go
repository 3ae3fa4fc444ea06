package valueobject

import "fmt"

// Span is a half-open byte range [Start, End) over a SourceFile.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes in the span.
func (s Span) Len() uint32 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Candidate is a documentable declaration that has no attached doc comment.
// It is only valid alongside the ParseTree it was collected from.
type Candidate struct {
	// ID is the candidate's identity within a run. Results are correlated by ID.
	ID            int
	Kind          DeclarationKind
	NodeType      string
	Name          string
	EnclosingName string

	// Span covers the declaration including annotations and modifiers.
	Span            Span
	StartPos        Position
	PrecedingTrivia Span

	// Indentation is the leading whitespace of the declaration's line.
	Indentation string
	// AtLineStart is false when code precedes the declaration on its line.
	AtLineStart bool
	Node        *ParseNode
}

// InsertOffset is the byte offset a doc comment for the candidate is inserted at.
func (c Candidate) InsertOffset() uint32 {
	return c.Span.Start
}

// Line returns the 1-based line of the declaration.
func (c Candidate) Line() int {
	return int(c.StartPos.Row) + 1
}

// QualifiedName joins the enclosing type name and the declaration name.
func (c Candidate) QualifiedName() string {
	switch {
	case c.EnclosingName == "":
		return c.Name
	case c.Name == "":
		return c.EnclosingName
	default:
		return c.EnclosingName + "." + c.Name
	}
}

// String renders the candidate for log and report output.
func (c Candidate) String() string {
	return fmt.Sprintf("%s %s (line %d)", c.Kind, c.QualifiedName(), c.Line())
}

// SkipReason explains why a declaration did not receive a generated comment.
type SkipReason string

const (
	SkipDocumented       SkipReason = "documented"
	SkipTooLarge         SkipReason = "too_large"
	SkipGenerationFailed SkipReason = "generation_failed"
	SkipTimeout          SkipReason = "timeout"
	SkipCancelled        SkipReason = "cancelled"
	SkipExtractionFailed SkipReason = "extraction_failed"
)

// SkippedDeclaration records a declaration left as it was, with the reason.
type SkippedDeclaration struct {
	Kind          DeclarationKind
	Name          string
	EnclosingName string
	Line          int
	Reason        SkipReason
	Detail        string
}
