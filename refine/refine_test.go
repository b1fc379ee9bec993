package refine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	out string
	err error
}

func (s stubLLM) Complete(ctx context.Context, prompt string, opts core.CompletionOptions) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func TestSelectStrategyComplexityWins(t *testing.T) {
	a := analysis{Complexity: 0.9, Density: 0.1, Quality: 0.1}
	assert.Equal(t, StrategySimplifyComplex, SelectStrategy(a, 100, 1000))
}

func TestSelectStrategyFocusOnTaskWhenOverTargetLength(t *testing.T) {
	a := analysis{Complexity: 0.1, Density: 0.9, Quality: 0.9}
	assert.Equal(t, StrategyFocusOnTask, SelectStrategy(a, 5000, 1000))
}

func TestSelectStrategyAdaptiveDefault(t *testing.T) {
	a := analysis{Complexity: 0.1, Density: 0.9, Quality: 0.9}
	assert.Equal(t, StrategyAdaptive, SelectStrategy(a, 100, 1000))
}

func TestRefineUsesLLMOutputAndScoresQuality(t *testing.T) {
	llm := stubLLM{out: strings.Repeat("refined ", 10)}
	original := strings.Repeat("original content ", 20)
	from := core.AgentDescriptor{AgentID: "a1"}
	to := core.AgentDescriptor{AgentID: "a2", MaxContextLength: 10000}

	refined, snapshot := Refine(context.Background(), original, "task_input", from, to, llm, core.CompletionOptions{})
	assert.Equal(t, llm.out, refined)
	assert.Equal(t, "a1", snapshot.FromAgentID)
	assert.Equal(t, "a2", snapshot.ToAgentID)
	assert.GreaterOrEqual(t, snapshot.Quality, 0.0)
	assert.LessOrEqual(t, snapshot.Quality, 1.0)
}

func TestRefineFallsBackOnLLMError(t *testing.T) {
	llm := stubLLM{err: errors.New("unavailable")}
	original := "<think>hidden</think>\nvisible content"
	from := core.AgentDescriptor{AgentID: "a1"}
	to := core.AgentDescriptor{AgentID: "a2"}

	refined, snapshot := Refine(context.Background(), original, "task_input", from, to, llm, core.CompletionOptions{})
	assert.Equal(t, "visible content", refined)
	assert.Equal(t, string(StrategyAdaptive), snapshot.Strategy)
	assert.Equal(t, 0.5, snapshot.Quality)
}

func TestHistoryIsBounded(t *testing.T) {
	h := NewHistory()
	for i := 0; i < maxHistoryPerSession+10; i++ {
		h.Add(core.ContextTransferSnapshot{Quality: 1})
	}
	require.Len(t, h.Snapshots(), maxHistoryPerSession)
}
