// Package invoker implements the one collaborator the orchestration engine
// needs from the external Worker Agent Service: core.AgentInvoker.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/resilience"
)

// HTTPInvoker resolves an agent ID to its BackendEndpoint via the catalog
// and POSTs the prompt as JSON, the same request/response-marshaling shape
// the reasoning LLM client uses for its own provider calls. Each agent ID
// gets its own circuit breaker so a consistently failing worker agent stops
// receiving traffic across sessions rather than only within the scheduler's
// own per-invocation retry (scheduler/invoke.go).
type HTTPInvoker struct {
	Catalog    *catalog.Store
	HTTPClient *http.Client
	Logger     core.Logger
	Metrics    resilience.MetricsCollector

	mu       sync.Mutex
	breakers map[string]*resilience.CircuitBreaker
}

// SetMetrics attaches a circuit breaker metrics collector (e.g.
// resilience.NewOTelMetricsCollector) used by every breaker created from
// this point on. Breakers already created keep whatever collector they
// were built with.
func (h *HTTPInvoker) SetMetrics(m resilience.MetricsCollector) {
	h.Metrics = m
}

// NewHTTPInvoker builds an HTTPInvoker. httpClient may be nil, in which
// case a client with a 120s timeout is used (matching the default
// AgentExecutionTimeout the scheduler itself enforces per call).
func NewHTTPInvoker(store *catalog.Store, httpClient *http.Client, logger core.Logger) *HTTPInvoker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &HTTPInvoker{
		Catalog:    store,
		HTTPClient: httpClient,
		Logger:     logger,
		breakers:   make(map[string]*resilience.CircuitBreaker),
	}
}

// breakerFor returns agentID's circuit breaker, creating it on first use.
func (h *HTTPInvoker) breakerFor(agentID string) *resilience.CircuitBreaker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cb, ok := h.breakers[agentID]; ok {
		return cb
	}
	cfg := resilience.DefaultConfig()
	cfg.Name = "invoker/" + agentID
	cfg.Logger = h.Logger
	if h.Metrics != nil {
		cfg.Metrics = h.Metrics
	}
	cb, err := resilience.NewCircuitBreaker(cfg)
	if err != nil {
		// DefaultConfig is always valid; this path cannot be reached.
		cb, _ = resilience.NewCircuitBreaker(resilience.DefaultConfig())
	}
	h.breakers[agentID] = cb
	return cb
}

type invokeRequest struct {
	AgentID string `json:"agent_id"`
	Prompt  string `json:"prompt"`
}

type invokeResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
	Error     string   `json:"error"`
}

// Invoke satisfies core.AgentInvoker. The HTTP round trip runs through
// agentID's circuit breaker, so a consistently failing worker stops
// receiving traffic across sessions instead of only within the scheduler's
// own per-invocation retry.
func (h *HTTPInvoker) Invoke(ctx context.Context, agentID, prompt string) (string, []string, error) {
	agent, ok := h.Catalog.Get(agentID)
	if !ok {
		return "", nil, fmt.Errorf("invoker: unknown agent %q", agentID)
	}
	if agent.BackendEndpoint == "" {
		return "", nil, fmt.Errorf("invoker: agent %q has no backend endpoint", agentID)
	}

	var out invokeResponse
	cb := h.breakerFor(agentID)
	err := cb.Execute(ctx, func() error {
		body, merr := json.Marshal(invokeRequest{AgentID: agentID, Prompt: prompt})
		if merr != nil {
			return fmt.Errorf("invoker: marshal request: %w", merr)
		}

		req, rerr := http.NewRequestWithContext(ctx, http.MethodPost, agent.BackendEndpoint, bytes.NewReader(body))
		if rerr != nil {
			return fmt.Errorf("invoker: build request: %w", rerr)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, derr := h.HTTPClient.Do(req)
		if derr != nil {
			return fmt.Errorf("invoker: calling %s: %w", agentID, derr)
		}
		defer resp.Body.Close()

		raw, ierr := io.ReadAll(resp.Body)
		if ierr != nil {
			return fmt.Errorf("invoker: reading response from %s: %w", agentID, ierr)
		}

		if resp.StatusCode != http.StatusOK {
			h.Logger.Warn("agent invocation returned non-200", map[string]interface{}{
				"agent_id": agentID, "status": resp.StatusCode, "body": string(raw),
			})
			return fmt.Errorf("invoker: %s responded with status %d", agentID, resp.StatusCode)
		}

		if uerr := json.Unmarshal(raw, &out); uerr != nil {
			return fmt.Errorf("invoker: parsing response from %s: %w", agentID, uerr)
		}
		if out.Error != "" {
			return fmt.Errorf("invoker: %s reported error: %s", agentID, out.Error)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	return out.Response, out.ToolsUsed, nil
}
