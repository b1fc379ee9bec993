package matcher

import (
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
)

func TestScoreBaseCase(t *testing.T) {
	agent := core.AgentDescriptor{AgentID: "a1", Name: "Generic"}
	step := core.WorkflowStep{StepID: "s1", Description: "do something unrelated"}
	assert.Equal(t, 0.5, Score(agent, step))
}

func TestScoreStrongSpecializationMatch(t *testing.T) {
	agent := core.AgentDescriptor{AgentID: "a1", Name: "WeatherAgent"}
	step := core.WorkflowStep{StepID: "s1", RequiredCapability: "weather_forecasting"}
	assert.InDelta(t, 1.0, Score(agent, step), 0.001, "0.5 base + 0.95 strong match, clamped to 1")
}

func TestScoreCapabilityTokenMatch(t *testing.T) {
	agent := core.AgentDescriptor{AgentID: "a1", Name: "Agent", Capabilities: []string{"data_retrieval"}}
	step := core.WorkflowStep{StepID: "s1", Description: "perform data retrieval for the user"}
	assert.InDelta(t, 0.9, Score(agent, step), 0.001)
}

func TestScoreKeywordMatches(t *testing.T) {
	agent := core.AgentDescriptor{AgentID: "a1", Name: "Agent", Keywords: []string{"forecast", "rain"}}
	step := core.WorkflowStep{StepID: "s1", Description: "forecast the rain tomorrow"}
	assert.InDelta(t, 0.9, Score(agent, step), 0.001, "0.5 base + 0.2*2 keyword matches")
}

func TestScoreClampsToOne(t *testing.T) {
	agent := core.AgentDescriptor{
		AgentID: "a1", Name: "WeatherAgent", Domain: "weather", Specialization: "weather forecasting",
		Capabilities: []string{"weather"}, Keywords: []string{"weather", "forecast"},
	}
	step := core.WorkflowStep{StepID: "s1", Description: "weather forecast please", RequiredCapability: "weather"}
	assert.Equal(t, 1.0, Score(agent, step))
}

func TestScoreCrossPenaltyAnalyticalStepCreativeAgent(t *testing.T) {
	agent := core.AgentDescriptor{AgentID: "a1", Name: "PoetBot", Specialization: "creative writing"}
	step := core.WorkflowStep{StepID: "s1", Description: "analyze the quarterly sales data report"}
	assert.InDelta(t, 0.35, Score(agent, step), 0.001, "0.5 base * 0.7 cross-penalty")
}
