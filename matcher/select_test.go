package matcher

import (
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weatherAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent", Domain: "weather", Specialization: "weather forecasting", Capabilities: []string{"weather"}}
}

func poetAgent() core.AgentDescriptor {
	return core.AgentDescriptor{AgentID: "a2", Name: "PoetBot", Domain: "creative", Specialization: "creative writing", Capabilities: []string{"creative_writing"}}
}

func TestSelectSinglePicksHighestScorer(t *testing.T) {
	plan := core.Plan{
		WorkflowPattern:       core.WorkflowSingleAgent,
		OrchestrationStrategy: core.StrategySingle,
		Steps:                 []core.WorkflowStep{{StepID: "s1", Description: "what's the weather today", RequiredCapability: "weather"}},
	}
	selected, assignments, _ := Select(plan, []core.AgentDescriptor{weatherAgent(), poetAgent()})

	require.Len(t, selected, 1)
	assert.Equal(t, "a1", selected[0].AgentID)
	require.Len(t, assignments, 1)
	assert.Equal(t, "a1", assignments[0].AgentID)
	assert.Equal(t, "s1", assignments[0].StepID)
}

func TestSelectMultiAgentBindsOneStepPerAgent(t *testing.T) {
	plan := core.Plan{
		WorkflowPattern: core.WorkflowMultiAgent,
		Steps: []core.WorkflowStep{
			{StepID: "s1", Description: "get the weather forecast", RequiredCapability: "weather", ExecutionOrder: 1},
			{StepID: "s2", Description: "write a creative poem about it", RequiredCapability: "creative_writing", ExecutionOrder: 2, Dependencies: []string{"s1"}},
		},
	}
	selected, assignments, _ := Select(plan, []core.AgentDescriptor{weatherAgent(), poetAgent()})

	require.Len(t, selected, 2)
	require.Len(t, assignments, 2)
	assert.Equal(t, "a1", assignments[0].AgentID)
	assert.Equal(t, "a2", assignments[1].AgentID)
	assert.Equal(t, "high", assignments[0].Priority)
	assert.Equal(t, "medium", assignments[1].Priority)
	assert.Equal(t, []string{"s1"}, assignments[1].Dependencies)
}

func TestSelectDegenerateSingleAgentTakesAllSteps(t *testing.T) {
	plan := core.Plan{
		WorkflowPattern: core.WorkflowMultiAgent,
		Steps: []core.WorkflowStep{
			{StepID: "s1", Description: "step one", ExecutionOrder: 1},
			{StepID: "s2", Description: "step two", ExecutionOrder: 2},
		},
	}
	only := core.AgentDescriptor{AgentID: "a1", Name: "OnlyAgent"}
	selected, assignments, _ := Select(plan, []core.AgentDescriptor{only})

	require.Len(t, selected, 1)
	require.Len(t, assignments, 2)
	assert.Equal(t, "a1", assignments[0].AgentID)
	assert.Equal(t, "a1", assignments[1].AgentID)
}

func TestSelectNoAgentsReturnsEmpty(t *testing.T) {
	plan := core.Plan{WorkflowPattern: core.WorkflowMultiAgent, Steps: []core.WorkflowStep{{StepID: "s1"}}}
	selected, assignments, _ := Select(plan, nil)
	assert.Empty(t, selected)
	assert.Empty(t, assignments)
}
