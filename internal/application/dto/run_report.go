package dto

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"javadocgen/internal/domain/valueobject"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by RunReport.Render.
const (
	ReportFormatJSON = "json"
	ReportFormatYAML = "yaml"
)

// SkippedEntry describes one declaration that was left undocumented.
type SkippedEntry struct {
	Kind          string `json:"kind"                     yaml:"kind"`
	Name          string `json:"name"                     yaml:"name"`
	EnclosingName string `json:"enclosing_name,omitempty" yaml:"enclosing_name,omitempty"`
	Line          int    `json:"line"                     yaml:"line"`
	Reason        string `json:"reason"                   yaml:"reason"`
	Detail        string `json:"detail,omitempty"         yaml:"detail,omitempty"`
}

// DocumentedEntry describes one declaration that received a generated comment.
type DocumentedEntry struct {
	Kind          string `json:"kind"                     yaml:"kind"`
	Name          string `json:"name"                     yaml:"name"`
	EnclosingName string `json:"enclosing_name,omitempty" yaml:"enclosing_name,omitempty"`
	Line          int    `json:"line"                     yaml:"line"`
	DurationMs    int64  `json:"duration_ms"              yaml:"duration_ms"`
}

// RunReport summarizes one documentation run over a single file.
type RunReport struct {
	Path              string            `json:"path" yaml:"path"`
	CorrelationID     string            `json:"correlation_id,omitempty" yaml:"correlation_id,omitempty"`
	Backend           string            `json:"backend,omitempty" yaml:"backend,omitempty"`
	Declarations      int               `json:"declarations" yaml:"declarations"`
	AlreadyDocumented int               `json:"already_documented" yaml:"already_documented"`
	CandidatesFound   int               `json:"candidates_found" yaml:"candidates_found"`
	Documented        []DocumentedEntry `json:"documented" yaml:"documented"`
	Skipped           []SkippedEntry    `json:"skipped" yaml:"skipped"`
	SyntaxErrors      int               `json:"syntax_errors" yaml:"syntax_errors"`
	Formatter         string            `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Formatted         bool              `json:"formatted" yaml:"formatted"`
	Warnings          []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	StartedAt         time.Time         `json:"started_at" yaml:"started_at"`
	Duration          time.Duration     `json:"duration" yaml:"duration"`
}

// NewRunReport creates an empty report for path.
func NewRunReport(path string) *RunReport {
	return &RunReport{
		Path:       path,
		Documented: []DocumentedEntry{},
		Skipped:    []SkippedEntry{},
		StartedAt:  time.Now(),
	}
}

// AddDocumented records a candidate that received a comment.
func (r *RunReport) AddDocumented(c valueobject.Candidate, duration time.Duration) {
	r.Documented = append(r.Documented, DocumentedEntry{
		Kind:          c.Kind.String(),
		Name:          c.Name,
		EnclosingName: c.EnclosingName,
		Line:          c.Line(),
		DurationMs:    duration.Milliseconds(),
	})
}

// AddSkipped records a declaration left as it was.
func (r *RunReport) AddSkipped(s valueobject.SkippedDeclaration) {
	r.Skipped = append(r.Skipped, SkippedEntry{
		Kind:          s.Kind.String(),
		Name:          s.Name,
		EnclosingName: s.EnclosingName,
		Line:          s.Line,
		Reason:        string(s.Reason),
		Detail:        s.Detail,
	})
}

// AddWarning records a non-fatal problem.
func (r *RunReport) AddWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SortEntries orders documented and skipped entries by line.
func (r *RunReport) SortEntries() {
	sort.SliceStable(r.Documented, func(i, j int) bool { return r.Documented[i].Line < r.Documented[j].Line })
	sort.SliceStable(r.Skipped, func(i, j int) bool { return r.Skipped[i].Line < r.Skipped[j].Line })
}

// SkipCounts returns the number of skipped declarations per reason.
// Already documented declarations are counted separately and not included.
func (r *RunReport) SkipCounts() map[string]int {
	counts := make(map[string]int)
	for _, s := range r.Skipped {
		counts[s.Reason]++
	}
	return counts
}

// FailedCount is the number of candidates that did not receive a comment.
func (r *RunReport) FailedCount() int {
	return r.CandidatesFound - len(r.Documented)
}

// Render serializes the report in the given format.
func (r *RunReport) Render(format string) ([]byte, error) {
	switch format {
	case "", ReportFormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case ReportFormatYAML:
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// RunResult is the outcome of processing one file.
type RunResult struct {
	// Original is the input text.
	Original []byte
	// Patched is Original with every generated comment inserted.
	Patched []byte
	// Output is Patched after formatting, or Patched when formatting was skipped.
	Output []byte
	Report *RunReport
}

// Changed reports whether the output differs from the input.
func (r *RunResult) Changed() bool {
	return string(r.Original) != string(r.Output)
}
