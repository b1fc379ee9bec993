package planner

import (
	"strings"

	"github.com/ashfrnndz21/agentmesh/core"
)

// containsAnyKeyword reports whether query contains any of the given (lowercased)
// keywords.
func containsAnyKeyword(query string, keywords []string) bool {
	lower := strings.ToLower(query)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// findConnective returns the first multi-agent connective marker present
// in query, and its byte offset, or ("", -1) if none is present.
func findConnective(query string, markers []string) (marker string, index int) {
	lower := strings.ToLower(query)
	best := -1
	bestMarker := ""
	for _, m := range markers {
		if m == "" {
			continue
		}
		if idx := strings.Index(lower, strings.ToLower(m)); idx != -1 {
			if best == -1 || idx < best {
				best, bestMarker = idx, m
			}
		}
	}
	return bestMarker, best
}

// Heuristic produces a syntactically valid Plan without calling the
// reasoning LLM, used when the LLM is unreachable or returns unparseable
// text. It classifies the query via keyword lookup and the same
// multi-agent connective rule the post-processing pass applies to LLM
// output, so the fallback and the repaired LLM path converge on the same
// shape.
func Heuristic(query string, cfg *core.Config) core.Plan {
	plan := core.Plan{
		Query:           query,
		Intent:          "fulfill user request",
		Domain:          "general",
		Complexity:      core.ComplexitySimple,
		WorkflowPattern: core.WorkflowSingleAgent,
		SuccessCriteria: "the user's request is addressed",
		Reasoning:       "heuristic fallback: reasoning LLM unavailable or unparseable",
		Steps: []core.WorkflowStep{
			{StepID: "step-1", Description: query, RequiredCapability: "general_assistance", ExecutionOrder: 1},
		},
	}

	technical := containsAnyKeyword(query, cfg.TechnicalKeywords)
	creative := containsAnyKeyword(query, cfg.CreativeKeywords)
	if marker, idx := findConnective(query, cfg.MultiAgentKeywords); idx != -1 {
		plan.WorkflowPattern = core.WorkflowMultiAgent
		plan.MultiDomain = true
		plan.Steps = splitOnConnective(query, marker, idx)
	} else if technical && creative {
		plan.WorkflowPattern = core.WorkflowMultiAgent
		plan.MultiDomain = true
		plan.Complexity = core.ComplexityModerate
	}

	switch {
	case technical && creative:
		plan.Domain = "technical+creative"
	case technical:
		plan.Domain = "technical"
	case creative:
		plan.Domain = "creative"
	}

	plan.OrchestrationStrategy = defaultStrategyFor(plan.WorkflowPattern)
	return plan
}

func defaultStrategyFor(pattern core.WorkflowPattern) core.Strategy {
	if pattern == core.WorkflowSingleAgent {
		return core.StrategySingle
	}
	return core.StrategySequential
}

// splitOnConnective splits query at the first connective marker into
// exactly two verbatim left/right workflow steps.
func splitOnConnective(query, marker string, idx int) []core.WorkflowStep {
	left := strings.TrimSpace(query[:idx])
	right := strings.TrimSpace(query[idx+len(marker):])
	if left == "" {
		left = query
	}
	if right == "" {
		right = query
	}
	return []core.WorkflowStep{
		{StepID: "step-1", Description: left, RequiredCapability: "general_assistance", ExecutionOrder: 1},
		{StepID: "step-2", Description: right, RequiredCapability: "general_assistance", ExecutionOrder: 2},
	}
}
