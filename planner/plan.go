// Package planner implements the Query Planner (C5): it turns a natural
// language query into a structured, validated Plan, either via the
// reasoning LLM (with a forgiving JSON extractor and one repair retry) or,
// failing that, via a deterministic keyword-based heuristic.
package planner

import (
	"context"
	"errors"

	"github.com/ashfrnndz21/agentmesh/core"
)

// ErrPlanError is returned only when both the LLM and the heuristic
// fallback fail to produce a plan with at least one step — the
// component design notes this should be unreachable in practice, since
// postprocess always synthesizes a step when none exists.
var ErrPlanError = errors.New("planner: unable to produce a plan with at least one step")

// Plan implements the C5 contract: Plan(query) -> Plan | PlanError.
// catalogInfo is the pre-rendered agent summary (catalog.FormatForLLM's
// output) included in the LLM prompt.
func Plan(ctx context.Context, query, catalogInfo string, llm core.ReasoningLLM, cfg *core.Config, logger core.Logger) (core.Plan, error) {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	log := logger
	if cal, ok := logger.(core.ComponentAwareLogger); ok {
		log = cal.WithComponent("orchestrator/planner")
	}

	plan, err := planViaLLM(ctx, query, catalogInfo, llm, cfg, log)
	if err != nil {
		log.Warn("falling back to heuristic planner", map[string]interface{}{"reason": err.Error()})
		plan = Heuristic(query, cfg)
	}

	plan = postprocess(plan, cfg, query)
	plan.Query = query

	if len(plan.Steps) == 0 {
		return core.Plan{}, ErrPlanError
	}
	return plan, nil
}

// planViaLLM calls the reasoning LLM, parses its response, and — per §12 —
// retries once with an explicit parse-error repair prompt before giving
// up.
func planViaLLM(ctx context.Context, query, catalogInfo string, llm core.ReasoningLLM, cfg *core.Config, log core.Logger) (core.Plan, error) {
	if llm == nil {
		return core.Plan{}, errors.New("no reasoning LLM configured")
	}

	opts := core.CompletionOptions{Model: cfg.OrchestratorModel, Timeout: cfg.PlanningTimeout}

	prompt := BuildPrompt(catalogInfo, query)
	response, err := llm.Complete(ctx, prompt, opts)
	if err != nil {
		return core.Plan{}, err
	}

	plan, parseErr := parseLLMResponse(query, response)
	if parseErr == nil {
		return plan, nil
	}

	log.Warn("planner response failed to parse, retrying once", map[string]interface{}{"error": parseErr.Error()})

	repairPrompt := buildRepairPrompt(catalogInfo, query, parseErr)
	response, err = llm.Complete(ctx, repairPrompt, opts)
	if err != nil {
		return core.Plan{}, err
	}
	return parseLLMResponse(query, response)
}
