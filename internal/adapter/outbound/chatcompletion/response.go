package chatcompletion

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const (
	dataPrefix     = "data: "
	doneSentinel   = "[DONE]"
	escapedNewline = "[h_newline]"
)

type chatChoice struct {
	Message *chatMessage `json:"message,omitempty"`
	Delta   *chatMessage `json:"delta,omitempty"`
	Text    string       `json:"text,omitempty"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

// text returns the first choice's message, or the concatenated deltas of a stream chunk.
func (r *chatResponse) text() string {
	if len(r.Choices) > 0 && r.Choices[0].Message != nil {
		return r.Choices[0].Message.Content
	}

	var sb strings.Builder
	for _, choice := range r.Choices {
		if choice.Delta != nil {
			sb.WriteString(choice.Delta.Content)
			continue
		}
		sb.WriteString(choice.Text)
	}
	return sb.String()
}

// DecodeResponse extracts the generated text from a response body. Two shapes
// are accepted: a single JSON completion object, and a line stream where each
// line may carry a "data: " prefix, newlines inside the text are escaped as
// "[h_newline]" and "[DONE]" ends the stream. Stream lines that are JSON
// chunks contribute their delta content; other lines contribute their text.
func DecodeResponse(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", nil
	}

	if trimmed[0] == '{' {
		var resp chatResponse
		if err := json.Unmarshal(trimmed, &resp); err == nil {
			if resp.Error != nil {
				return "", errors.New(resp.Error.Message)
			}
			if len(resp.Choices) > 0 {
				return resp.text(), nil
			}
		}
	}

	return decodeStream(string(body)), nil
}

func decodeStream(body string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		content := strings.Replace(line, dataPrefix, "", 1)
		if strings.TrimSpace(content) == doneSentinel {
			continue
		}

		if chunk := strings.TrimSpace(content); strings.HasPrefix(chunk, "{") {
			var resp chatResponse
			if err := json.Unmarshal([]byte(chunk), &resp); err == nil && len(resp.Choices) > 0 {
				sb.WriteString(resp.text())
				continue
			}
		}

		sb.WriteString(strings.ReplaceAll(content, escapedNewline, "\n"))
	}
	return sb.String()
}
