package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"javadocgen/internal/application/common/retry"
	"javadocgen/internal/domain/errors/domain"
	"javadocgen/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/",
		Model:      "gemini-test",
		MaxRetries: maxRetries,
		Retry:      &retry.RetryConfig{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1},
	})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClient_GenerateComment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-test:generateContent"), r.URL.Path)
		writeJSON(w, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[`+
			`{"text":"/**\n * Adds two numbers.\n */"}]},"finishReason":"STOP"}]}`)
	}, 0)

	text, err := client.GenerateComment(context.Background(), outbound.GenerationRequest{Prompt: "Document add"})
	require.NoError(t, err)
	assert.Equal(t, "/**\n * Adds two numbers.\n */", text)
}

func TestClient_GenerateComment_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"candidates":[]}`)
	}, 0)

	_, err := client.GenerateComment(context.Background(), outbound.GenerationRequest{Prompt: "p"})

	var genErr *outbound.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, outbound.CodeEmptyResponse, genErr.Code)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestClient_GenerateComment_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusTooManyRequests,
			`{"error":{"code":429,"message":"quota exhausted","status":"RESOURCE_EXHAUSTED"}}`)
	}, 1)

	_, err := client.GenerateComment(context.Background(), outbound.GenerationRequest{Prompt: "p"})

	var genErr *outbound.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, outbound.CodeRateLimited, genErr.Code)
	assert.True(t, genErr.IsQuotaError())
}

func TestClient_GenerateComment_EmptyPrompt(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected")
	}, 0)

	_, err := client.GenerateComment(context.Background(), outbound.GenerationRequest{})
	var genErr *outbound.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, outbound.CodeInvalidRequest, genErr.Code)
}

func TestClientConfig_Validate(t *testing.T) {
	assert.Error(t, (&ClientConfig{}).Validate())
	assert.Error(t, (&ClientConfig{APIKey: "k", BaseURL: "localhost"}).Validate())
	assert.Error(t, (&ClientConfig{APIKey: "k", MaxRetries: -1}).Validate())
	assert.NoError(t, (&ClientConfig{APIKey: "k"}).Validate())
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(context.Background(), ClientConfig{APIKey: "k"})
	require.NoError(t, err)

	info := client.ModelInfo()
	assert.Equal(t, "gemini", info.Provider)
	assert.Equal(t, DefaultModel, info.Model)
	assert.Equal(t, DefaultTimeout, info.Timeout)
}
