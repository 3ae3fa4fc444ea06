package dto

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// CandidateEntry describes one declaration that would be documented.
type CandidateEntry struct {
	Kind          string `json:"kind"                     yaml:"kind"`
	Name          string `json:"name"                     yaml:"name"`
	EnclosingName string `json:"enclosing_name,omitempty" yaml:"enclosing_name,omitempty"`
	Line          int    `json:"line"                     yaml:"line"`
	Signature     string `json:"signature"                yaml:"signature"`
	Tokens        int    `json:"tokens"                   yaml:"tokens"`
	TooLarge      bool   `json:"too_large,omitempty"      yaml:"too_large,omitempty"`
}

// ScanReport lists the documentation state of one file without generating anything.
type ScanReport struct {
	Path         string           `json:"path"          yaml:"path"`
	Candidates   []CandidateEntry `json:"candidates"    yaml:"candidates"`
	Documented   []SkippedEntry   `json:"documented"    yaml:"documented"`
	SyntaxErrors int              `json:"syntax_errors" yaml:"syntax_errors"`
}

// Render serializes the report in the given format.
func (r *ScanReport) Render(format string) ([]byte, error) {
	switch format {
	case "", ReportFormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case ReportFormatYAML:
		return yaml.Marshal(r)
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}
