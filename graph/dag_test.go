package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeBuildsDependenciesAndDependents(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")

	n2, ok := d.Node("a2")
	require.True(t, ok)
	assert.Equal(t, []string{"a1"}, n2.Dependencies)

	n1, ok := d.Node("a1")
	require.True(t, ok)
	assert.Equal(t, []string{"a2"}, n1.Dependents)
}

func TestAddEdgeIgnoresSelfLoopsAndDuplicates(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a1")
	_, ok := d.Node("a1")
	assert.False(t, ok, "a pure self-loop must not even create a node")

	d.AddEdge("a1", "a2")
	d.AddEdge("a1", "a2")
	n2, _ := d.Node("a2")
	assert.Len(t, n2.Dependencies, 1)
}

func TestHasCycleDetectsCycle(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")
	d.AddEdge("a2", "a3")
	assert.False(t, d.HasCycle())

	d.AddEdge("a3", "a1")
	assert.True(t, d.HasCycle())
}

func TestBreakLowestWeightEdgeRestoresAcyclicity(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")
	d.AddEdge("a2", "a3")
	d.AddEdge("a3", "a1")
	require.True(t, d.HasCycle())

	weights := map[string]float64{"a1": 0.9, "a2": 0.2, "a3": 0.3}
	broken, ok := d.BreakLowestWeightEdge(weights)
	require.True(t, ok)
	assert.Equal(t, Edge{From: "a2", To: "a3"}, broken, "the a2->a3 edge has the lowest combined endpoint weight")

	assert.False(t, d.HasCycle())
}

func TestTopologicalOrderRespectsDependencies(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")
	d.AddEdge("a1", "a3")
	d.AddEdge("a2", "a4")
	d.AddEdge("a3", "a4")

	order := d.TopologicalOrder()
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["a1"], pos["a2"])
	assert.Less(t, pos["a1"], pos["a3"])
	assert.Less(t, pos["a2"], pos["a4"])
	assert.Less(t, pos["a3"], pos["a4"])
}

func TestExecutionLevelsGroupIntoWaves(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")
	d.AddEdge("a1", "a3")
	d.AddEdge("a2", "a4")
	d.AddEdge("a3", "a4")

	levels := d.ExecutionLevels()
	require.Len(t, levels, 3)
	assert.ElementsMatch(t, []string{"a1"}, levels[0])
	assert.ElementsMatch(t, []string{"a2", "a3"}, levels[1])
	assert.ElementsMatch(t, []string{"a4"}, levels[2])
}

func TestReadyNodesAdvanceAsDependenciesComplete(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")

	ready := d.ReadyNodes()
	assert.Equal(t, []string{"a1"}, ready)

	d.MarkRunning("a1")
	assert.Empty(t, d.ReadyNodes())

	d.MarkCompleted("a1")
	assert.Equal(t, []string{"a2"}, d.ReadyNodes())
}

func TestFailedDependencyUnblocksDependents(t *testing.T) {
	d := New()
	d.AddEdge("a1", "a2")
	d.MarkRunning("a1")
	d.MarkFailed("a1")

	assert.Equal(t, []string{"a2"}, d.ReadyNodes(), "a failed upstream agent must not deadlock its dependents")
}

func TestHasEdgesReportsIndependentGraph(t *testing.T) {
	d := New()
	d.AddNode("a1")
	d.AddNode("a2")
	assert.False(t, d.HasEdges())

	d.AddEdge("a1", "a2")
	assert.True(t, d.HasEdges())
}
