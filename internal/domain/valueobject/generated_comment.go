package valueobject

import "time"

// GeneratedComment is the outcome of one generation request: either a
// well-formed doc comment block or the error that prevented one.
type GeneratedComment struct {
	CandidateID     int
	CandidateOffset uint32
	Text            string
	Err             error
	Reason          SkipReason
	Duration        time.Duration
}

// Succeeded reports whether the comment can be turned into a patch.
func (g GeneratedComment) Succeeded() bool {
	return g.Err == nil && g.Text != ""
}
