package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/orchestrator"
	"github.com/ashfrnndz21/agentmesh/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvoker struct {
	out map[string]string
}

func (s stubInvoker) Invoke(ctx context.Context, agentID, prompt string) (string, []string, error) {
	return s.out[agentID], nil, nil
}

func weatherAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", Domain: "weather", Capabilities: []string{"weather"}}
}

func newTestHandler() (*Handler, *catalog.Store, *tracer.Tracer) {
	store := catalog.NewStore()
	trc := tracer.New(nil, nil)
	cfg := core.DefaultConfig()
	invoker := stubInvoker{out: map[string]string{"a1": "18C and sunny"}}
	o := orchestrator.New(store, trc, invoker, nil, cfg, core.NoOpLogger{})
	return New(o, store, trc, core.NoOpLogger{}), store, trc
}

func doRequest(h *Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleOrchestrateSuccess(t *testing.T) {
	h, store, _ := newTestHandler()
	store.Register(weatherAgent())

	rec := doRequest(h, http.MethodPost, "/orchestrate", orchestrateRequest{Query: "what's the weather like"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp core.OrchestratorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleOrchestrateNoAgentsReturnsBadRequest(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodPost, "/orchestrate", orchestrateRequest{Query: "anything"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOrchestrateMissingQueryReturnsBadRequest(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodPost, "/orchestrate", orchestrateRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAgentsRegisterAndList(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodPost, "/agents/register", weatherAgent())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h, http.MethodGet, "/agents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var agents []core.AgentDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &agents))
	require.Len(t, agents, 1)
	assert.Equal(t, "WeatherAgent", agents[0].Name)
}

func TestHandleAgentDeleteUnknownReturnsNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodDelete, "/agents/does-not-exist", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTracesFiltersByStatus(t *testing.T) {
	h, _, trc := newTestHandler()
	trc.StartTrace("s1", "q", core.StrategySingle)
	trc.CompleteTrace("s1", "r", true)

	rec := doRequest(h, http.MethodGet, "/traces?status=completed", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []tracer.TraceSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "s1", summaries[0].SessionID)
}

func TestHandleTraceByIDNotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodGet, "/traces/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTraceContextEvolution(t *testing.T) {
	h, _, trc := newTestHandler()
	trc.StartTrace("s1", "q", core.StrategySingle)
	trc.LogContextTransfer("s1", core.ContextTransferSnapshot{ToAgentID: "a1", Strategy: "direct"})
	trc.CompleteTrace("s1", "r", true)

	rec := doRequest(h, http.MethodGet, "/traces/s1/context-evolution", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshots []core.ContextTransferSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	require.Len(t, snapshots, 1)
	assert.Equal(t, "a1", snapshots[0].ToAgentID)
}

func TestHandleHealth(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := doRequest(h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
}

func TestHandleMetrics(t *testing.T) {
	h, _, trc := newTestHandler()
	trc.StartTrace("s1", "q", core.StrategySingle)
	trc.CompleteTrace("s1", "r", true)

	rec := doRequest(h, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var m tracer.Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, int64(1), m.TotalSessions)
}
