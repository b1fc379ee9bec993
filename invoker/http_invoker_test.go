package invoker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeSendsPromptAndParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req invokeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a1", req.AgentID)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(invokeResponse{Response: "18C and sunny", ToolsUsed: []string{"weather-api"}})
	}))
	defer srv.Close()

	store := catalog.NewStore()
	store.Register(core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", BackendEndpoint: srv.URL})

	inv := NewHTTPInvoker(store, nil, nil)
	text, tools, err := inv.Invoke(context.Background(), "a1", "hello")

	require.NoError(t, err)
	assert.Equal(t, "18C and sunny", text)
	assert.Equal(t, []string{"weather-api"}, tools)
}

func TestInvokeUnknownAgentReturnsError(t *testing.T) {
	store := catalog.NewStore()
	inv := NewHTTPInvoker(store, nil, nil)

	_, _, err := inv.Invoke(context.Background(), "missing", "hello")
	require.Error(t, err)
}

func TestInvokeNonOKStatusReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := catalog.NewStore()
	store.Register(core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", BackendEndpoint: srv.URL})

	inv := NewHTTPInvoker(store, nil, nil)
	_, _, err := inv.Invoke(context.Background(), "a1", "hello")
	require.Error(t, err)
}

type recordingMetrics struct {
	successes int
}

func (m *recordingMetrics) RecordSuccess(name string)                      { m.successes++ }
func (m *recordingMetrics) RecordFailure(name string, errorType string)    {}
func (m *recordingMetrics) RecordStateChange(name string, from, to string) {}
func (m *recordingMetrics) RecordRejection(name string)                    {}

func TestInvokeRecordsMetricsThroughSetMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(invokeResponse{Response: "ok"})
	}))
	defer srv.Close()

	store := catalog.NewStore()
	store.Register(core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", BackendEndpoint: srv.URL})

	metrics := &recordingMetrics{}
	inv := NewHTTPInvoker(store, nil, nil)
	inv.SetMetrics(metrics)

	_, _, err := inv.Invoke(context.Background(), "a1", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.successes)
}

func TestInvokeAgentReportedErrorReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(invokeResponse{Error: "tool unavailable"})
	}))
	defer srv.Close()

	store := catalog.NewStore()
	store.Register(core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", BackendEndpoint: srv.URL})

	inv := NewHTTPInvoker(store, nil, nil)
	_, _, err := inv.Invoke(context.Background(), "a1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool unavailable")
}
