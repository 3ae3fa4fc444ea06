package outbound

import "context"

// SourceFormatter reindents a source text. Implementations return
// domain.ErrFormatterUnavailable when the tool cannot be run at all, and
// domain.ErrFormatterFailed when it ran and failed; callers keep the unformatted text in both cases.
type SourceFormatter interface {
	Format(ctx context.Context, text []byte) ([]byte, error)
	Name() string
}
