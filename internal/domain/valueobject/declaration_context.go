package valueobject

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// DeclarationContext is the normalized description of a candidate handed to a
// generation backend. It holds no reference back into the parse tree.
type DeclarationContext struct {
	Kind          DeclarationKind
	Name          string
	Signature     string
	EnclosingName string
	BodyExcerpt   string
	// Truncated is set when BodyExcerpt was cut to the configured limit.
	Truncated     bool
	TokenCount    int
}

// Digest identifies contexts that would produce the same generation request.
func (c DeclarationContext) Digest() string {
	h := sha256.New()
	for _, part := range []string{
		c.Kind.String(),
		c.Signature,
		c.EnclosingName,
		c.BodyExcerpt,
		strconv.FormatBool(c.Truncated),
	} {
		h.Write([]byte(strconv.Itoa(len(part))))
		h.Write([]byte{':'})
		h.Write([]byte(part))
	}
	return hex.EncodeToString(h.Sum(nil))
}
