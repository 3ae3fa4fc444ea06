package service

import (
	"errors"
	"strings"

	"javadocgen/internal/domain/valueobject"
	"javadocgen/internal/textpatch"
)

// BuildPatch turns a generated doc comment into an insertion in front of the
// candidate's declaration. Every comment line after the first is prefixed with
// the candidate's indentation and the block ends with a newline plus the same
// indentation, so the declaration keeps its original column.
func BuildPatch(candidate valueobject.Candidate, comment string) (valueobject.Patch, error) {
	comment = strings.TrimSpace(comment)
	if !strings.HasPrefix(comment, "/*") || !strings.HasSuffix(comment, "*/") {
		return valueobject.Patch{}, errors.New("comment is not a block comment")
	}

	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i > 0 && strings.HasPrefix(line, "*") {
			line = " " + line
		}
		lines[i] = line
	}

	indent := candidate.Indentation
	var sb strings.Builder
	if !candidate.AtLineStart {
		sb.WriteString("\n")
		sb.WriteString(indent)
	}
	sb.WriteString(strings.Join(lines, "\n"+indent))
	sb.WriteString("\n")
	sb.WriteString(indent)

	return valueobject.Patch{
		CandidateID:   candidate.ID,
		InsertOffset:  candidate.InsertOffset(),
		InsertionText: sb.String(),
	}, nil
}

// ApplyPatches applies patches to the original source. Patches must have distinct offsets.
func ApplyPatches(original []byte, patches []valueobject.Patch) ([]byte, error) {
	insertions := make([]textpatch.Insertion, 0, len(patches))
	for _, p := range patches {
		insertions = append(insertions, textpatch.Insertion{Offset: int(p.InsertOffset), Text: p.InsertionText})
	}
	return textpatch.Apply(original, insertions)
}
