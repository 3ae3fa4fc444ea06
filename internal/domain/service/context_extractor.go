package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/domain/valueobject"
)

// TruncationMarker ends a body excerpt that was cut short.
const TruncationMarker = "..."

const minBodyExcerptLimit = 64

// Body node types, one per declaration form.
var bodyNodeTypes = []string{
	"class_body",
	"interface_body",
	"enum_body",
	"annotation_type_body",
	"constructor_body",
	"block",
}

var tokenPattern = regexp.MustCompile(`\w+|[^\w\s]`)

// ExtractorConfig bounds the size of extracted contexts.
type ExtractorConfig struct {
	// BodyExcerptLimit caps the body excerpt in bytes.
	BodyExcerptLimit int
	// MaxDeclarationTokens rejects declarations with more tokens. Zero disables the check.
	MaxDeclarationTokens int
}

// DefaultExtractorConfig returns the default extraction limits.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		BodyExcerptLimit:     4096,
		MaxDeclarationTokens: 2048,
	}
}

// TooLargeError reports a declaration over the token limit.
type TooLargeError struct {
	Tokens int
	Limit  int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("declaration has %d tokens, limit is %d", e.Tokens, e.Limit)
}

func (e *TooLargeError) Unwrap() error {
	return domain.ErrDeclarationTooLarge
}

// ContextExtractor derives the request context for a candidate.
type ContextExtractor struct {
	config ExtractorConfig
}

// NewContextExtractor creates an extractor, raising a too-small excerpt limit to the minimum.
func NewContextExtractor(cfg ExtractorConfig) *ContextExtractor {
	if cfg.BodyExcerptLimit < minBodyExcerptLimit {
		cfg.BodyExcerptLimit = minBodyExcerptLimit
	}
	if cfg.MaxDeclarationTokens < 0 {
		cfg.MaxDeclarationTokens = 0
	}
	return &ContextExtractor{config: cfg}
}

// Extract builds the context for candidate. The signature runs from the start of
// the declaration to its body with whitespace collapsed; the body excerpt is the
// body text capped at the configured limit.
func (e *ContextExtractor) Extract(
	tree *valueobject.ParseTree,
	candidate valueobject.Candidate,
) (valueobject.DeclarationContext, error) {
	node := candidate.Node
	if node == nil {
		return valueobject.DeclarationContext{}, errors.New("candidate has no syntax node")
	}

	declaration := tree.GetNodeText(node)
	tokens := CountTokens(declaration)
	if e.config.MaxDeclarationTokens > 0 && tokens > e.config.MaxDeclarationTokens {
		return valueobject.DeclarationContext{}, &TooLargeError{Tokens: tokens, Limit: e.config.MaxDeclarationTokens}
	}

	var signature, body string
	if bodyNode := node.FirstChildOfType(bodyNodeTypes...); bodyNode != nil {
		src := tree.Source()
		signature = string(src[node.StartByte:bodyNode.StartByte])
		body = tree.GetNodeText(bodyNode)
	} else {
		signature = strings.TrimSuffix(strings.TrimSpace(declaration), ";")
	}

	excerpt, truncated := TruncateExcerpt(body, e.config.BodyExcerptLimit)

	return valueobject.DeclarationContext{
		Kind:          candidate.Kind,
		Name:          candidate.Name,
		Signature:     NormalizeWhitespace(signature),
		EnclosingName: candidate.EnclosingName,
		BodyExcerpt:   excerpt,
		Truncated:     truncated,
		TokenCount:    tokens,
	}, nil
}

// NormalizeWhitespace collapses every whitespace run to a single space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountTokens counts word and punctuation tokens.
func CountTokens(s string) int {
	return len(tokenPattern.FindAllStringIndex(s, -1))
}

// TruncateExcerpt caps body at limit bytes. A truncated excerpt ends at the last
// complete line that fits, followed by TruncationMarker on its own line, so the
// excerpt never ends inside a statement.
func TruncateExcerpt(body string, limit int) (string, bool) {
	if limit <= 0 || len(body) <= limit {
		return body, false
	}

	budget := limit - len(TruncationMarker) - 1
	if budget < 0 {
		budget = 0
	}

	cut := budget
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	if nl := strings.LastIndexByte(body[:cut], '\n'); nl > 0 {
		cut = nl
	}

	return strings.TrimRight(body[:cut], " \t\r\n") + "\n" + TruncationMarker, true
}
