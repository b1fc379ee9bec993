package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/graph"
	"github.com/ashfrnndz21/agentmesh/memory"
	"github.com/ashfrnndz21/agentmesh/tracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInvoker struct {
	mu       sync.Mutex
	calls    []string
	fn       func(agentID, prompt string) (string, []string, error)
	fixedOut map[string]string
}

func (s *stubInvoker) Invoke(ctx context.Context, agentID, prompt string) (string, []string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, agentID)
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(agentID, prompt)
	}
	return s.fixedOut[agentID], nil, nil
}

func testCfg() *core.Config {
	cfg := core.DefaultConfig()
	cfg.AgentExecutionTimeout = 2 * time.Second
	cfg.RefinementTimeout = time.Second
	return cfg
}

func weatherAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", MaxContextLength: 1000}
}

func poetAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a2", Name: "PoetAgent", MaxContextLength: 1000}
}

func TestRunSingleInvokesOneAgentVerbatim(t *testing.T) {
	plan := core.Plan{
		Query:           "what's the weather in paris",
		WorkflowPattern: core.WorkflowSingleAgent,
		OrchestrationStrategy: core.StrategySingle,
		Steps:           []core.WorkflowStep{{StepID: "s1", ExecutionOrder: 1}},
	}
	assignments := []core.TaskAssignment{{StepID: "s1", AgentID: "a1", AgentName: "WeatherAgent", Task: "get weather"}}
	invoker := &stubInvoker{fixedOut: map[string]string{"a1": "18C and sunny"}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", plan.Query, core.StrategySingle)

	res := Run(context.Background(), Input{
		SessionID: "s1", Query: plan.Query, Plan: plan, Assignments: assignments,
		Agents: []core.AgentDescriptor{weatherAgent()}, DAG: graph.New(),
		Invoker: invoker, Tracer: tr, Memory: mem, Cfg: testCfg(),
	})

	require.Len(t, res.Records, 1)
	assert.Equal(t, core.StrategySingle, res.FinalStrategy)
	assert.True(t, res.Success)
	assert.Equal(t, core.StatusCompleted, res.Records[0].Status)
	cleaned, ok := mem.Cleaned("WeatherAgent")
	require.True(t, ok)
	assert.Equal(t, "18C and sunny", cleaned)
}

func TestRunSequentialOrdersByExecutionOrder(t *testing.T) {
	plan := core.Plan{
		Query:           "weather then poem",
		WorkflowPattern: core.WorkflowMultiAgent,
		Steps: []core.WorkflowStep{
			{StepID: "s1", ExecutionOrder: 1},
			{StepID: "s2", ExecutionOrder: 2, Dependencies: []string{"s1"}},
		},
	}
	assignments := []core.TaskAssignment{
		{StepID: "s1", AgentID: "a1", AgentName: "WeatherAgent", Task: "get weather"},
		{StepID: "s2", AgentID: "a2", AgentName: "PoetAgent", Task: "write a poem", Dependencies: []string{"s1"}},
	}
	invoker := &stubInvoker{fixedOut: map[string]string{"a1": "18C and cloudy", "a2": "a poem about clouds"}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", plan.Query, core.StrategySequential)
	d := graph.New()
	d.AddNode("a1")
	d.AddNode("a2")
	d.AddEdge("a1", "a2")

	res := Run(context.Background(), Input{
		SessionID: "s1", Query: plan.Query, Plan: plan, Assignments: assignments,
		Agents: []core.AgentDescriptor{weatherAgent(), poetAgent()}, DAG: d,
		Invoker: invoker, Tracer: tr, Memory: mem, Cfg: testCfg(),
	})

	require.Len(t, res.Records, 2)
	assert.Equal(t, core.StrategySequential, res.FinalStrategy)
	assert.Equal(t, "a1", res.Records[0].AgentID)
	assert.Equal(t, "a2", res.Records[1].AgentID)
	assert.Equal(t, []string{"a1", "a2"}, invoker.calls)
}

func TestRunParallelDispatchesIndependentAgentsConcurrently(t *testing.T) {
	plan := core.Plan{
		Query:           "weather and a poem",
		WorkflowPattern: core.WorkflowMultiAgent,
		Steps: []core.WorkflowStep{
			{StepID: "s1", ExecutionOrder: 1},
			{StepID: "s2", ExecutionOrder: 1},
		},
	}
	assignments := []core.TaskAssignment{
		{StepID: "s1", AgentID: "a1", AgentName: "WeatherAgent"},
		{StepID: "s2", AgentID: "a2", AgentName: "PoetAgent"},
	}
	invoker := &stubInvoker{fixedOut: map[string]string{"a1": "sunny", "a2": "a poem"}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", plan.Query, core.StrategyParallel)
	d := graph.New()
	d.AddNode("a1")
	d.AddNode("a2")

	res := Run(context.Background(), Input{
		SessionID: "s1", Query: plan.Query, Plan: plan, Assignments: assignments,
		Agents: []core.AgentDescriptor{weatherAgent(), poetAgent()}, DAG: d,
		Invoker: invoker, Tracer: tr, Memory: mem, Cfg: testCfg(),
	})

	assert.Equal(t, core.StrategyParallel, res.FinalStrategy)
	require.Len(t, res.Records, 2)
	assert.True(t, res.Success)
}

func TestRunParallelDowngradesToHybridWhenDAGHasEdges(t *testing.T) {
	plan := core.Plan{
		Query:           "weather then poem",
		WorkflowPattern: core.WorkflowMultiAgent,
		Steps: []core.WorkflowStep{
			{StepID: "s1", ExecutionOrder: 1},
			{StepID: "s2", ExecutionOrder: 2, Dependencies: []string{"s1"}},
		},
		OrchestrationStrategy: core.StrategyParallel,
	}
	assignments := []core.TaskAssignment{
		{StepID: "s1", AgentID: "a1", AgentName: "WeatherAgent"},
		{StepID: "s2", AgentID: "a2", AgentName: "PoetAgent", Dependencies: []string{"s1"}},
	}
	invoker := &stubInvoker{fixedOut: map[string]string{"a1": "sunny", "a2": "a poem"}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", plan.Query, core.StrategyParallel)
	d := graph.New()
	d.AddNode("a1")
	d.AddNode("a2")
	d.AddEdge("a1", "a2")

	res := Run(context.Background(), Input{
		SessionID: "s1", Query: plan.Query, Plan: plan, Assignments: assignments,
		Agents: []core.AgentDescriptor{weatherAgent(), poetAgent()}, DAG: d,
		Invoker: invoker, Tracer: tr, Memory: mem, Cfg: testCfg(),
	})

	assert.Equal(t, core.StrategyHybrid, res.FinalStrategy)
	require.Len(t, res.Records, 2)
}

func TestRunHybridDispatchesWavesAndPropagatesContext(t *testing.T) {
	plan := core.Plan{
		Query:           "weather then poem",
		WorkflowPattern: core.WorkflowMultiAgent,
		OrchestrationStrategy: core.StrategyHybrid,
		Steps: []core.WorkflowStep{
			{StepID: "s1", ExecutionOrder: 1},
			{StepID: "s2", ExecutionOrder: 2, Dependencies: []string{"s1"}},
		},
	}
	assignments := []core.TaskAssignment{
		{StepID: "s1", AgentID: "a1", AgentName: "WeatherAgent", Task: "get weather"},
		{StepID: "s2", AgentID: "a2", AgentName: "PoetAgent", Task: "write about it", Dependencies: []string{"s1"}},
	}
	var capturedPrompt string
	invoker := &stubInvoker{fn: func(agentID, prompt string) (string, []string, error) {
		if agentID == "a2" {
			capturedPrompt = prompt
		}
		if agentID == "a1" {
			return "18C and sunny in Paris", nil, nil
		}
		return "a poem about sun", nil, nil
	}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", plan.Query, core.StrategyHybrid)
	d := graph.New()
	d.AddNode("a1")
	d.AddNode("a2")
	d.AddEdge("a1", "a2")

	res := Run(context.Background(), Input{
		SessionID: "s1", Query: plan.Query, Plan: plan, Assignments: assignments,
		Agents: []core.AgentDescriptor{weatherAgent(), poetAgent()}, DAG: d,
		Invoker: invoker, Tracer: tr, Memory: mem, Cfg: testCfg(),
	})

	assert.Equal(t, core.StrategyHybrid, res.FinalStrategy)
	require.Len(t, res.Records, 2)
	assert.Contains(t, capturedPrompt, "CONTEXT FROM PREVIOUS AGENTS")
	assert.Contains(t, capturedPrompt, "WeatherAgent")
}

func TestInvokeAgentRetriesOnTransportErrorThenSucceeds(t *testing.T) {
	calls := 0
	invoker := &stubInvoker{fn: func(agentID, prompt string) (string, []string, error) {
		calls++
		if calls < 2 {
			return "", nil, errors.New("transient transport error")
		}
		return "final answer", nil, nil
	}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	cfg := testCfg()
	cfg.AgentExecutionTimeout = 5 * time.Second

	task := agentTask{AgentID: "a1", AgentName: "WeatherAgent", Agent: weatherAgent()}
	rec := invokeAgent(context.Background(), Input{SessionID: "s1", Query: "q", Invoker: invoker, Tracer: tr, Memory: mem, Cfg: cfg}, task, true, nil)

	assert.Equal(t, core.StatusCompleted, rec.Status)
	assert.Equal(t, "final answer", rec.CleanedOutput)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestInvokeAgentRecordsFailureAfterExhaustingRetries(t *testing.T) {
	invoker := &stubInvoker{fn: func(agentID, prompt string) (string, []string, error) {
		return "", nil, errors.New("permanent failure")
	}}
	mem := memory.New()
	tr := tracer.New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	cfg := testCfg()
	cfg.AgentExecutionTimeout = 5 * time.Second

	task := agentTask{AgentID: "a1", AgentName: "WeatherAgent", Agent: weatherAgent()}
	rec := invokeAgent(context.Background(), Input{SessionID: "s1", Query: "q", Invoker: invoker, Tracer: tr, Memory: mem, Cfg: cfg}, task, true, nil)

	assert.Equal(t, core.StatusFailed, rec.Status)
	assert.NotEmpty(t, rec.Error)
	_, ok := mem.Cleaned("WeatherAgent")
	assert.False(t, ok, "a failed invocation must not write to session memory")
}

func TestPrepareInputStep1IsVerbatimQuery(t *testing.T) {
	task := agentTask{AgentName: "WeatherAgent"}
	got := prepareInput(task, "what's the weather", true, []depOutput{{AgentName: "X", Text: "ignored"}})
	assert.Equal(t, "what's the weather", got)
}

func TestPrepareInputLaterStepIncludesContextBlockWhenDepsExist(t *testing.T) {
	task := agentTask{Task: "write a poem"}
	got := prepareInput(task, "q", false, []depOutput{{AgentName: "WeatherAgent", Text: "18C and sunny"}})
	assert.Contains(t, got, "write a poem")
	assert.Contains(t, got, "CONTEXT FROM PREVIOUS AGENTS")
	assert.Contains(t, got, "Previous Agent (WeatherAgent) Output:")
	assert.Contains(t, got, "INSTRUCTIONS")
}

func TestPrepareInputOmitsContextBlockWhenNoDeps(t *testing.T) {
	task := agentTask{Task: "write a poem"}
	got := prepareInput(task, "q", false, nil)
	assert.Equal(t, "write a poem", got)
}

func TestPrepareInputNotesUpstreamFailure(t *testing.T) {
	task := agentTask{Task: "write a poem"}
	got := prepareInput(task, "q", false, []depOutput{{AgentName: "WeatherAgent", Failed: true}})
	assert.Contains(t, got, "upstream step failed")
}

func TestPrepareInputTruncatesDependencyOutput(t *testing.T) {
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	task := agentTask{Task: "write a poem"}
	got := prepareInput(task, "q", false, []depOutput{{AgentName: "A", Text: string(long)}})
	assert.LessOrEqual(t, len(got)-len("write a poem\n\nCONTEXT FROM PREVIOUS AGENTS:\nPrevious Agent (A) Output:\n"), 800+200)
}

func TestDetermineStrategyHonorsExplicitSequential(t *testing.T) {
	plan := core.Plan{OrchestrationStrategy: core.StrategySequential, WorkflowPattern: core.WorkflowSingleAgent}
	assert.Equal(t, core.StrategySequential, determineStrategy(plan, false, 1))
}

func TestDetermineStrategySingleAgentForcesSingle(t *testing.T) {
	plan := core.Plan{WorkflowPattern: core.WorkflowSingleAgent}
	assert.Equal(t, core.StrategySingle, determineStrategy(plan, false, 1))
}

func TestDetermineStrategyNoEdgesMultiAgentIsParallel(t *testing.T) {
	plan := core.Plan{WorkflowPattern: core.WorkflowMultiAgent}
	assert.Equal(t, core.StrategyParallel, determineStrategy(plan, false, 2))
}

func TestDetermineStrategyEdgesMultiAgentIsSequential(t *testing.T) {
	plan := core.Plan{WorkflowPattern: core.WorkflowMultiAgent}
	assert.Equal(t, core.StrategySequential, determineStrategy(plan, true, 2))
}
