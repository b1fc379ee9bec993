// Package llmclient implements core.ReasoningLLM against the OpenAI chat
// completions API, the orchestrator's own reasoning model used for
// planning, context refinement and synthesis (as distinct from the worker
// agents invoked through the invoker package).
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/telemetry"
)

// OpenAIClient implements core.ReasoningLLM for OpenAI's chat completions
// endpoint.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     core.Logger
	tracer     *telemetry.OTelProvider
}

// SetHTTPClient overrides the HTTP client used for completions, e.g. to
// install telemetry.NewTracedHTTPClient's otelhttp instrumentation.
func (c *OpenAIClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetTracer attaches the OpenTelemetry provider used to span and measure
// each completion call. May be left unset, in which case Complete runs
// without tracing.
func (c *OpenAIClient) SetTracer(provider *telemetry.OTelProvider) {
	c.tracer = provider
}

// NewOpenAIClient builds an OpenAIClient. apiKey falls back to
// OPENAI_API_KEY when empty; logger may be nil.
func NewOpenAIClient(apiKey string, logger core.Logger) *OpenAIClient {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// Complete satisfies core.ReasoningLLM. opts.Timeout, when set, overrides
// the request deadline for this single call (the orchestrator uses three
// distinct timeouts for planning/refinement/synthesis).
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts core.CompletionOptions) (result string, err error) {
	model := opts.Model
	if model == "" || model == "default" {
		model = "gpt-4o-mini"
	}

	if c.tracer != nil {
		var span telemetry.Span
		ctx, span = c.tracer.StartSpan(ctx, "llmclient.Complete")
		span.SetAttribute("llm.model", model)
		start := time.Now()
		defer func() {
			if err != nil {
				span.RecordError(err)
			}
			c.tracer.RecordMetric("llmclient.completion.duration_ms", float64(time.Since(start).Milliseconds()), map[string]string{"model": model})
			span.End()
		}()
	}

	if c.apiKey == "" {
		return "", fmt.Errorf("llmclient: OPENAI_API_KEY not configured")
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("llmclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llmclient: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llmclient: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("openai completion failed", map[string]interface{}{"status": resp.StatusCode, "body": string(body)})
		return "", fmt.Errorf("llmclient: openai API error (status %d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("llmclient: parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("llmclient: no completion choices returned")
	}
	return out.Choices[0].Message.Content, nil
}
