// Package domain provides domain-specific error definitions and utilities.
package domain

import "errors"

// Parsing errors.
var (
	// ErrParse reports that the grammar could not produce a tree at all. It is fatal for a run.
	ErrParse            = errors.New("source could not be parsed")
	ErrEmptySource      = errors.New("source file is empty")
	ErrUnsupportedInput = errors.New("source file is not a Java file")
)

// Extraction errors.
var (
	ErrDeclarationTooLarge = errors.New("declaration exceeds the token limit")
)

// Generation errors.
var (
	// ErrGeneration marks a per-candidate failure. Candidates that fail are skipped, never fatal.
	ErrGeneration    = errors.New("comment generation failed")
	ErrEmptyResponse = errors.New("generation backend returned an empty response")
)

// Patching errors.
var (
	// ErrPatchConflict signals two insertions at one offset, an invariant violation.
	ErrPatchConflict = errors.New("conflicting patches at the same offset")
	ErrPatchInvalid  = errors.New("patch offset outside the source buffer")
)

// Formatter errors.
var (
	ErrFormatterUnavailable = errors.New("formatter unavailable")
	ErrFormatterFailed      = errors.New("formatter failed")
)

// General domain errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidConfig = errors.New("invalid configuration")
)
