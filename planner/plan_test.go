package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, opts core.CompletionOptions) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func TestExtractJSONFromFencedBlock(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"intent\":\"x\"}\n```\nThanks."
	got, ok := ExtractJSON(raw)
	require.True(t, ok)
	assert.Equal(t, `{"intent":"x"}`, got)
}

func TestExtractJSONFromBareObject(t *testing.T) {
	raw := `Sure, here you go: {"intent": "x", "steps": [{"a": "}"}]} and done.`
	got, ok := ExtractJSON(raw)
	require.True(t, ok)
	assert.Equal(t, `{"intent": "x", "steps": [{"a": "}"}]}`, got)
}

func TestPlanParsesValidLLMResponse(t *testing.T) {
	llm := &stubLLM{responses: []string{`{
		"intent": "get weather",
		"domain": "weather",
		"complexity": "simple",
		"workflow_pattern": "single_agent",
		"orchestration_strategy": "single",
		"steps": [{"step_id": "step-1", "description": "get weather", "required_capability": "weather", "execution_order": 1, "dependencies": []}],
		"success_criteria": "forecast returned",
		"reasoning": "simple lookup"
	}`}}

	cfg := core.DefaultConfig()
	plan, err := Plan(context.Background(), "what's the weather", "AGENTS", llm, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, core.WorkflowSingleAgent, plan.WorkflowPattern)
	assert.Equal(t, core.StrategySingle, plan.OrchestrationStrategy)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "weather", plan.Steps[0].RequiredCapability)
}

func TestPlanRetriesOnParseErrorThenSucceeds(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"not json at all",
		`{"intent":"x","workflow_pattern":"single_agent","steps":[{"step_id":"step-1","description":"d","required_capability":"c","execution_order":1}]}`,
	}}
	cfg := core.DefaultConfig()
	plan, err := Plan(context.Background(), "do something", "AGENTS", llm, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
	require.Len(t, plan.Steps, 1)
}

func TestPlanFallsBackToHeuristicWhenLLMUnreachable(t *testing.T) {
	llm := &stubLLM{err: errors.New("connection refused")}
	cfg := core.DefaultConfig()
	plan, err := Plan(context.Background(), "what's the weather", "AGENTS", llm, cfg, nil)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Steps)
}

func TestPlanPromotesMultiAgentOnConnective(t *testing.T) {
	llm := &stubLLM{responses: []string{`{
		"workflow_pattern": "single_agent",
		"steps": [{"step_id": "step-1", "description": "get the weather and then write a poem about it", "required_capability": "general_assistance", "execution_order": 1}]
	}`}}
	cfg := core.DefaultConfig()
	plan, err := Plan(context.Background(), "get the weather and then write a poem about it", "AGENTS", llm, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, core.WorkflowMultiAgent, plan.WorkflowPattern)
	assert.True(t, plan.MultiDomain)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, core.StrategySequential, plan.OrchestrationStrategy)
}

func TestPlanSynthesizesStepWhenEmpty(t *testing.T) {
	llm := &stubLLM{responses: []string{`{"workflow_pattern": "single_agent", "steps": []}`}}
	cfg := core.DefaultConfig()
	plan, err := Plan(context.Background(), "help me", "AGENTS", llm, cfg, nil)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "general_assistance", plan.Steps[0].RequiredCapability)
}
