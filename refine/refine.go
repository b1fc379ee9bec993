// Package refine implements the Context Refinement Engine (C4): for every
// sequential/hybrid handoff where a downstream agent depends on upstream
// output, it picks a refinement strategy, asks the reasoning LLM to
// produce a refined version of the context, and scores the result.
package refine

import (
	"context"
	"fmt"
	"time"

	"github.com/ashfrnndz21/agentmesh/clean"
	"github.com/ashfrnndz21/agentmesh/core"
)

// Strategy is one of the five refinement strategies the component design
// names.
type Strategy string

const (
	StrategySimplifyComplex Strategy = "simplify_complex"
	StrategyEnrichMinimal   Strategy = "enrich_minimal"
	StrategyExtractKeyInfo  Strategy = "extract_key_info"
	StrategyFocusOnTask     Strategy = "focus_on_task"
	StrategyAdaptive        Strategy = "adaptive"
)

// SelectStrategy applies the deterministic thresholds in the order the
// component design lists them (first match wins).
func SelectStrategy(a analysis, contextLen, targetMaxContextLength int) Strategy {
	switch {
	case a.Complexity > 0.8:
		return StrategySimplifyComplex
	case a.Density < 0.3:
		return StrategyEnrichMinimal
	case a.Quality < 0.4:
		return StrategyExtractKeyInfo
	case targetMaxContextLength > 0 && contextLen > targetMaxContextLength:
		return StrategyFocusOnTask
	default:
		return StrategyAdaptive
	}
}

func promptFor(strategy Strategy, text, kind string) string {
	switch strategy {
	case StrategySimplifyComplex:
		return "Simplify the following " + kind + " context to its essential points, preserving meaning:\n\n" + text
	case StrategyEnrichMinimal:
		return "The following " + kind + " context is sparse; enrich it with any implied detail without inventing facts:\n\n" + text
	case StrategyExtractKeyInfo:
		return "Extract only the key, load-bearing information from the following " + kind + " context:\n\n" + text
	case StrategyFocusOnTask:
		return "Condense the following " + kind + " context to what is directly relevant to the next agent's task:\n\n" + text
	default:
		return "Lightly adapt the following " + kind + " context for the next agent, preserving content:\n\n" + text
	}
}

// Refine implements the C4 contract. text is the upstream cleaned output
// being handed off; target is the downstream agent receiving it.
func Refine(ctx context.Context, text, kind string, from, to core.AgentDescriptor, llm core.ReasoningLLM, opts core.CompletionOptions) (string, core.ContextTransferSnapshot) {
	now := time.Now()
	a := analyzeHeuristic(text)
	strategy := SelectStrategy(a, len(text), to.MaxContextLength)

	refined, err := tryLLMRefine(ctx, strategy, text, kind, llm, opts)
	if err != nil {
		refined = clean.Clean(text)
		strategy = StrategyAdaptive
	}

	quality := qualityScore(text, refined)
	if err != nil {
		quality = 0.5
	}

	snapshot := core.ContextTransferSnapshot{
		FromAgentID: from.AgentID,
		ToAgentID:   to.AgentID,
		Strategy:    string(strategy),
		OriginalLen: len(text),
		RefinedLen:  len(refined),
		Quality:     quality,
		Timestamp:   now,
	}
	return refined, snapshot
}

func tryLLMRefine(ctx context.Context, strategy Strategy, text, kind string, llm core.ReasoningLLM, opts core.CompletionOptions) (string, error) {
	if llm == nil {
		return "", fmt.Errorf("no reasoning LLM configured")
	}
	prompt := promptFor(strategy, text, kind)
	return llm.Complete(ctx, prompt, opts)
}

// qualityScore implements min(1.0, 0.8*(1-|lenRatio-0.5|)) where
// lenRatio = len(refined)/len(original), guarding against an empty
// original.
func qualityScore(original, refined string) float64 {
	if len(original) == 0 {
		return 0.5
	}
	lenRatio := float64(len(refined)) / float64(len(original))
	q := 0.8 * (1 - abs(lenRatio-0.5))
	if q > 1 {
		q = 1
	}
	if q < 0 {
		q = 0
	}
	return q
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
