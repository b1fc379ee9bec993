package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenAIClient, func()) {
	srv := httptest.NewServer(handler)
	c := NewOpenAIClient("test-key", core.NoOpLogger{})
	c.baseURL = srv.URL
	return c, srv.Close
}

func TestCompleteReturnsMessageContent(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "a generated plan"}},
			},
		})
	})
	defer closeFn()

	out, err := c.Complete(context.Background(), "plan this", core.CompletionOptions{Model: "default"})
	require.NoError(t, err)
	assert.Equal(t, "a generated plan", out)
}

func TestCompleteMissingAPIKeyErrors(t *testing.T) {
	c := NewOpenAIClient("", core.NoOpLogger{})
	c.apiKey = ""

	_, err := c.Complete(context.Background(), "prompt", core.CompletionOptions{})
	require.Error(t, err)
}

func TestCompleteNonOKStatusErrors(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer closeFn()

	_, err := c.Complete(context.Background(), "prompt", core.CompletionOptions{})
	require.Error(t, err)
}

func TestCompleteNoChoicesErrors(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []map[string]interface{}{}})
	})
	defer closeFn()

	_, err := c.Complete(context.Background(), "prompt", core.CompletionOptions{})
	require.Error(t, err)
}

func TestCompleteUsesOverriddenHTTPClient(t *testing.T) {
	c, closeFn := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "ok"}},
			},
		})
	})
	defer closeFn()

	c.SetHTTPClient(&http.Client{})
	out, err := c.Complete(context.Background(), "plan this", core.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
