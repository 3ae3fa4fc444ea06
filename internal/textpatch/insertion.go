// Package textpatch applies many text insertions to one immutable buffer.
//
// Offsets always refer to the original buffer. Insertions are applied from
// the highest offset down, so an insertion never shifts an offset that is
// still waiting to be applied.
package textpatch

import (
	"cmp"
	"fmt"
	"slices"

	"javadocgen/internal/domain/errors/domain"
)

// Insertion places Text before the byte at Offset in the original buffer.
// An Offset equal to the buffer length appends.
type Insertion struct {
	Offset int
	Text   string
}

// ValidationError describes an insertion that does not fit the buffer.
type ValidationError struct {
	Insertion Insertion
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid insertion at %d: %s", e.Insertion.Offset, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrPatchInvalid
}

// ConflictError describes two insertions keyed by the same offset.
type ConflictError struct {
	First  Insertion
	Second Insertion
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting insertions at offset %d", e.First.Offset)
}

func (e *ConflictError) Unwrap() error {
	return domain.ErrPatchConflict
}

// Validate checks every insertion against a buffer of contentLen bytes.
func Validate(insertions []Insertion, contentLen int) error {
	for _, ins := range insertions {
		if ins.Offset < 0 {
			return &ValidationError{Insertion: ins, Message: "offset is negative"}
		}
		if ins.Offset > contentLen {
			return &ValidationError{
				Insertion: ins,
				Message:   fmt.Sprintf("offset exceeds content length %d", contentLen),
			}
		}
	}
	return nil
}

// SortDescending returns a copy of insertions ordered from the highest offset to the lowest.
func SortDescending(insertions []Insertion) []Insertion {
	sorted := slices.Clone(insertions)
	slices.SortStableFunc(sorted, func(a, b Insertion) int {
		return cmp.Compare(b.Offset, a.Offset)
	})
	return sorted
}

// DetectConflicts reports the first pair of insertions sharing an offset.
// Insertions must be sorted by SortDescending.
func DetectConflicts(sorted []Insertion) error {
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Offset == sorted[i-1].Offset {
			return &ConflictError{First: sorted[i], Second: sorted[i-1]}
		}
	}
	return nil
}

// Prepare validates, sorts and checks insertions for conflicts.
func Prepare(insertions []Insertion, contentLen int) ([]Insertion, error) {
	if err := Validate(insertions, contentLen); err != nil {
		return nil, err
	}
	sorted := SortDescending(insertions)
	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
