package orchestrator

import (
	"context"
	"testing"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
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

// These tests pass a nil LLM to New, which forces the heuristic planner
// path and the concatenation fallback of the synthesizer.

func weatherAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", Domain: "weather", Capabilities: []string{"weather"}}
}

func poetAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a2", Name: "CreativeAssistant", Domain: "creative", Capabilities: []string{"creative", "poetry"}}
}

func newTestOrchestrator(invoker core.AgentInvoker) (*Orchestrator, *catalog.Store) {
	store := catalog.NewStore()
	trc := tracer.New(nil, nil)
	cfg := core.DefaultConfig()
	return New(store, trc, invoker, nil, cfg, core.NoOpLogger{}), store
}

func TestOrchestrateSingleAgentHeuristicPlan(t *testing.T) {
	invoker := stubInvoker{out: map[string]string{"a2": "Raindrops fall, soft and slow."}}
	o, store := newTestOrchestrator(invoker)
	store.Register(weatherAgent())
	store.Register(poetAgent())

	resp := o.Orchestrate(context.Background(), "Write me a short poem about rain.", "", nil)

	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Response, "Raindrops")
	assert.Equal(t, []string{"CreativeAssistant"}, resp.SelectedAgents)
	require.Len(t, resp.ExecutionDetails, 1)
	assert.Equal(t, core.StatusCompleted, resp.ExecutionDetails[0].Status)
}

func TestOrchestrateNoAgentsRegisteredFails(t *testing.T) {
	o, _ := newTestOrchestrator(stubInvoker{})

	resp := o.Orchestrate(context.Background(), "anything", "", nil)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no agents registered")
}

func TestOrchestratePreferredAgentsFiltersCandidates(t *testing.T) {
	o, store := newTestOrchestrator(stubInvoker{out: map[string]string{"a1": "18C and sunny"}})
	store.Register(weatherAgent())
	store.Register(poetAgent())

	resp := o.Orchestrate(context.Background(), "what's the weather like", "", []string{"a1"})

	for _, name := range resp.SelectedAgents {
		assert.Equal(t, "WeatherAgent", name)
	}
	assert.NotContains(t, resp.Error, "no agents registered")
}

func TestOrchestrateUsesProvidedSessionID(t *testing.T) {
	invoker := stubInvoker{out: map[string]string{"a2": "a poem"}}
	o, store := newTestOrchestrator(invoker)
	store.Register(weatherAgent())
	store.Register(poetAgent())

	resp := o.Orchestrate(context.Background(), "Write me a short poem.", "fixed-session", nil)

	assert.Equal(t, "fixed-session", resp.SessionID)
	trace, ok := o.Tracer.GetTrace("fixed-session")
	require.True(t, ok)
	assert.Equal(t, "fixed-session", trace.SessionID)
	assert.True(t, trace.Success)
}

func TestOrchestrateRecordsTraceEvents(t *testing.T) {
	invoker := stubInvoker{out: map[string]string{"a2": "a poem about rain"}}
	o, store := newTestOrchestrator(invoker)
	store.Register(weatherAgent())
	store.Register(poetAgent())

	resp := o.Orchestrate(context.Background(), "Write me a short poem about rain.", "", nil)

	require.NotEmpty(t, resp.Trace.Events)
	assert.Equal(t, core.EventOrchestrationStart, resp.Trace.Events[0].EventType)
	last := resp.Trace.Events[len(resp.Trace.Events)-1]
	assert.Equal(t, core.EventOrchestrationComplete, last.EventType)
}
