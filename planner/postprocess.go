package planner

import "github.com/ashfrnndz21/agentmesh/core"

// postprocess applies the three deterministic repair rules from the
// component design, in order, to whatever plan the LLM (or the heuristic
// fallback) produced. It is idempotent: running it twice on its own
// output is a no-op.
func postprocess(plan core.Plan, cfg *core.Config, query string) core.Plan {
	plan = promoteMultiAgent(plan, cfg, query)
	plan = synthesizeEmptySteps(plan, query)
	plan = normalizeStrategy(plan)
	return plan
}

// Rule 1: single_agent plans get promoted to multi_agent when the query
// carries a connective marker, or both a technical and a creative keyword.
func promoteMultiAgent(plan core.Plan, cfg *core.Config, query string) core.Plan {
	if plan.WorkflowPattern != core.WorkflowSingleAgent {
		return plan
	}

	marker, idx := findConnective(query, cfg.MultiAgentKeywords)
	technicalAndCreative := containsAnyKeyword(query, cfg.TechnicalKeywords) && containsAnyKeyword(query, cfg.CreativeKeywords)

	if idx == -1 && !technicalAndCreative {
		return plan
	}

	plan.WorkflowPattern = core.WorkflowMultiAgent
	plan.MultiDomain = true

	if idx != -1 && len(plan.Steps) < 2 {
		plan.Steps = splitOnConnective(query, marker, idx)
	}
	return plan
}

// Rule 2: an empty step list gets one synthesized general-assistance step.
func synthesizeEmptySteps(plan core.Plan, query string) core.Plan {
	if len(plan.Steps) > 0 {
		return plan
	}
	plan.Steps = []core.WorkflowStep{
		{StepID: "step-1", Description: query, RequiredCapability: "general_assistance", ExecutionOrder: 1},
	}
	return plan
}

// Rule 3: normalize orchestrationStrategy. single_agent always maps to
// "single"; any other pattern must land in {sequential, parallel, hybrid},
// defaulting to sequential when the LLM produced something else (or
// nothing).
func normalizeStrategy(plan core.Plan) core.Plan {
	if plan.WorkflowPattern == core.WorkflowSingleAgent {
		plan.OrchestrationStrategy = core.StrategySingle
		return plan
	}

	switch plan.OrchestrationStrategy {
	case core.StrategySequential, core.StrategyParallel, core.StrategyHybrid:
		// already valid
	default:
		plan.OrchestrationStrategy = core.StrategySequential
	}
	return plan
}
