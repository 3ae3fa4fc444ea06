package service

import (
	"fmt"
	"regexp"
	"strings"

	"javadocgen/internal/domain/errors/domain"
)

var (
	thinkBlockPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceLinePattern  = regexp.MustCompile("(?m)^[ \t]*```[^\n]*\n?")
)

// WrapCommentBlock turns raw backend output into a well-formed doc comment.
// Reasoning sections and markdown fences are dropped first. If the text
// already contains a "/** ... */" block, the last such block is used: a
// one-line block is kept verbatim, a multi-line block keeps its lines with
// the "*" gutter realigned. A plain "/* ... */" block is promoted to a doc
// comment; anything else is wrapped. Applying WrapCommentBlock to its own
// output returns it unchanged.
func WrapCommentBlock(raw string) (string, error) {
	text := StripResponseNoise(raw)
	if text == "" {
		return "", fmt.Errorf("%w: no comment text", domain.ErrEmptyResponse)
	}

	var lines []string
	if block, ok := lastBlockComment(text, "/**"); ok {
		lines = blockBodyLines(block, "/**")
		if !strings.Contains(block, "\n") && len(trimBlankEdges(lines)) > 0 {
			return block, nil
		}
	} else if block, ok := lastBlockComment(text, "/*"); ok {
		lines = blockBodyLines(block, "/*")
	} else if strings.HasPrefix(text, "/**") {
		// Unterminated block, typically a response cut off by a length limit.
		lines = blockBodyLines(text, "/**")
	} else {
		lines = strings.Split(text, "\n")
	}

	lines = trimBlankEdges(lines)
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: comment block is empty", domain.ErrEmptyResponse)
	}

	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, line := range lines {
		line = strings.ReplaceAll(line, "*/", "*&#47;")
		if line == "" {
			sb.WriteString(" *\n")
			continue
		}
		sb.WriteString(" * ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(" */")
	return sb.String(), nil
}

// StripResponseNoise removes reasoning sections and markdown code fences.
func StripResponseNoise(raw string) string {
	text := thinkBlockPattern.ReplaceAllString(raw, "")
	if idx := strings.LastIndex(text, "</think>"); idx >= 0 {
		text = text[idx+len("</think>"):]
	}
	text = fenceLinePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
}

// lastBlockComment returns the last complete comment opening with open.
func lastBlockComment(text, open string) (string, bool) {
	for searchEnd := len(text); searchEnd > 0; {
		start := strings.LastIndex(text[:searchEnd], open)
		if start < 0 {
			return "", false
		}
		if open == "/*" && strings.HasPrefix(text[start:], "/**") && !strings.HasPrefix(text[start:], "/**/") {
			searchEnd = start
			continue
		}
		if end := strings.Index(text[start+len(open):], "*/"); end >= 0 {
			return text[start : start+len(open)+end+2], true
		}
		searchEnd = start
	}
	return "", false
}

// blockBodyLines strips the delimiters and the leading "*" gutter of each line.
func blockBodyLines(block, open string) []string {
	body := strings.TrimSuffix(strings.TrimPrefix(block, open), "*/")
	raw := strings.Split(body, "\n")

	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimLeft(line, " \t")
		if strings.HasPrefix(line, "*") {
			line = strings.TrimPrefix(strings.TrimPrefix(line, "*"), " ")
		}
		lines = append(lines, line)
	}
	return lines
}

func trimBlankEdges(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t")
	}
	return lines
}
