package valueobject

// Patch is a single insertion keyed by an offset into the original source.
type Patch struct {
	CandidateID   int
	InsertOffset  uint32
	InsertionText string
}
