package graph

import (
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFromCapabilityDependencies(t *testing.T) {
	in := BuildInput{
		SelectedAgentIDs: []string{"a1", "a2"},
		AgentCapabilities: map[string][]string{
			"a1": {"data_retrieval"},
			"a2": {"report_writing"},
		},
		CapabilityDependencies: map[string][]string{
			"report_writing": {"data_retrieval"},
		},
		AgentScores: map[string]float64{"a1": 0.8, "a2": 0.9},
	}

	d, events := Build(in)
	assert.Empty(t, events)

	n2, ok := d.Node("a2")
	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, n2.Dependencies, "report_writing requires data_retrieval to run first")
}

func TestBuildFromExplicitStepDependencies(t *testing.T) {
	in := BuildInput{
		SelectedAgentIDs: []string{"a1", "a2"},
		StepAgent:        map[string]string{"s1": "a1", "s2": "a2"},
		StepDependencies: map[string][]string{"s2": {"s1"}},
		AgentScores:      map[string]float64{"a1": 0.5, "a2": 0.5},
	}

	d, events := Build(in)
	assert.Empty(t, events)

	n2, ok := d.Node("a2")
	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, n2.Dependencies)
}

func TestBuildRepairsCycleAndEmitsEvent(t *testing.T) {
	in := BuildInput{
		SelectedAgentIDs: []string{"a1", "a2", "a3"},
		StepAgent:        map[string]string{"s1": "a1", "s2": "a2", "s3": "a3"},
		StepDependencies: map[string][]string{
			"s1": {"s3"},
			"s2": {"s1"},
			"s3": {"s2"},
		},
		AgentScores: map[string]float64{"a1": 0.9, "a2": 0.1, "a3": 0.2},
	}

	d, events := Build(in)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventErrorOccurred, events[0].EventType)
	assert.False(t, d.HasCycle())
}

func TestBuildWithNoDependenciesYieldsIndependentNodes(t *testing.T) {
	in := BuildInput{
		SelectedAgentIDs: []string{"a1", "a2"},
		AgentScores:      map[string]float64{"a1": 1, "a2": 1},
	}

	d, events := Build(in)
	assert.Empty(t, events)
	assert.False(t, d.HasEdges())
}
