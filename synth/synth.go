// Package synth implements the Final Synthesizer (C10): it turns the set of
// cleaned per-agent outputs recorded in SessionMemory, plus the plan that
// produced them and an optional quality reflection, into one user-facing
// answer. It prefers asking the reasoning LLM for a structured synthesis and
// falls back to a deterministic per-agent concatenation when the LLM call
// fails or returns nothing usable.
package synth

import (
	"context"
	"strings"

	"github.com/ashfrnndz21/agentmesh/clean"
	"github.com/ashfrnndz21/agentmesh/core"
)

// Input bundles everything the synthesizer needs: the plan that drove
// execution, the agent names in recording order, and a lookup from agent
// name to its cleaned output. Reflection is optional context folded into
// the LLM prompt when present.
type Input struct {
	Plan        core.Plan
	AgentNames  []string
	Cleaned     map[string]string
	Reflections []ReflectionNote
}

// ReflectionNote is the minimal shape Synthesize needs from a quality
// reflection; callers adapt memory.QualityAnalysis into this to avoid an
// import-cycle-prone dependency on the memory package.
type ReflectionNote struct {
	AgentName       string
	Recommendations []string
}

// Synthesize produces the final answer for Input, using llm when non-nil.
// It always returns a non-empty string: on LLM failure or empty LLM output
// it falls back to deterministic concatenation.
func Synthesize(ctx context.Context, in Input, llm core.ReasoningLLM, opts core.CompletionOptions, logger core.Logger) string {
	if llm != nil {
		if out, err := synthesizeWithLLM(ctx, in, llm, opts); err == nil {
			cleaned := clean.Clean(out)
			if strings.TrimSpace(cleaned) != "" {
				return cleaned
			}
		} else if logger != nil {
			logger.Warn("synthesis via LLM failed, falling back to concatenation", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return synthesizeConcatenation(in)
}

func synthesizeWithLLM(ctx context.Context, in Input, llm core.ReasoningLLM, opts core.CompletionOptions) (string, error) {
	prompt := buildSynthesisPrompt(in)
	return llm.Complete(ctx, prompt, opts)
}

// buildSynthesisPrompt asks for a structured answer: executive summary,
// analysis, recommendations, metrics. It includes every recorded agent's
// cleaned output and, when present, its reflection recommendations.
func buildSynthesisPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("User Request: ")
	b.WriteString(in.Plan.Query)
	b.WriteString("\n\n")

	if in.Plan.Reasoning != "" {
		b.WriteString("Plan Reasoning: ")
		b.WriteString(in.Plan.Reasoning)
		b.WriteString("\n\n")
	}

	b.WriteString("Agent Outputs:\n\n")
	for _, name := range in.AgentNames {
		cleaned, ok := in.Cleaned[name]
		b.WriteString(name + ":\n")
		if !ok || strings.TrimSpace(cleaned) == "" {
			b.WriteString("(no output)\n\n")
			continue
		}
		b.WriteString(cleaned)
		b.WriteString("\n\n")
	}

	if len(in.Reflections) > 0 {
		b.WriteString("Quality Notes:\n")
		for _, r := range in.Reflections {
			if len(r.Recommendations) == 0 {
				continue
			}
			b.WriteString("- " + r.AgentName + ": " + strings.Join(r.Recommendations, "; ") + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Instructions:\n")
	b.WriteString("Produce a structured response with these sections:\n")
	b.WriteString("1. Executive Summary: one short paragraph answering the request directly.\n")
	b.WriteString("2. Analysis: synthesize the agent outputs above, resolving overlaps or contradictions.\n")
	b.WriteString("3. Recommendations: concrete next steps, if any apply.\n")
	b.WriteString("4. Metrics: any quantitative findings surfaced by the agents.\n")
	b.WriteString("Omit a section if the agent outputs give it nothing to say. Be concise.\n")

	return b.String()
}

// synthesizeConcatenation is the deterministic fallback: one line per
// recorded agent, "<agentName>: <cleaned>", skipping agents with no
// output, in recording order.
func synthesizeConcatenation(in Input) string {
	var b strings.Builder
	wrote := false
	for _, name := range in.AgentNames {
		cleaned, ok := in.Cleaned[name]
		if !ok || strings.TrimSpace(cleaned) == "" {
			continue
		}
		if wrote {
			b.WriteString("\n\n")
		}
		b.WriteString(name + ": " + cleaned)
		wrote = true
	}
	if !wrote {
		return "No agent produced usable output for this request."
	}
	return b.String()
}
