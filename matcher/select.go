package matcher

import (
	"sort"

	"github.com/ashfrnndz21/agentmesh/core"
)

const minAgentScoreThreshold = 0.3

// Select implements the C6 contract: score every (agent, step) pair,
// choose the agents the plan will use, and bind steps to agents as a
// task decomposition.
//
// This runtime has no external source of a pre-built task decomposition
// (the query planner emits only workflow steps, §4.1) — so Select always
// performs the greedy, dependency-aware construction the component design
// describes as "task decomposition repair"; there is nothing to repair
// *from*, only to build.
func Select(plan core.Plan, agents []core.AgentDescriptor) ([]core.AgentDescriptor, []core.TaskAssignment, map[string]float64) {
	scoreTable := ScoreTable(agents, plan.Steps)

	if plan.WorkflowPattern == core.WorkflowSingleAgent && plan.OrchestrationStrategy == core.StrategySingle {
		return selectSingle(plan, agents, scoreTable)
	}
	return selectMultiAgent(plan, agents, scoreTable)
}

func selectSingle(plan core.Plan, agents []core.AgentDescriptor, scoreTable map[string]float64) ([]core.AgentDescriptor, []core.TaskAssignment, map[string]float64) {
	if len(agents) == 0 || len(plan.Steps) == 0 {
		return nil, nil, scoreTable
	}
	step := plan.Steps[0]

	best := agents[0]
	bestScore := scoreTable[key(step.StepID, best.AgentID)]
	for _, a := range agents[1:] {
		sc := scoreTable[key(step.StepID, a.AgentID)]
		if sc > bestScore || (sc == bestScore && a.Name < best.Name) {
			best, bestScore = a, sc
		}
	}
	// The ≥0.3 requirement only gates a *different* candidate; since we
	// already took the single highest scorer, falling back to "the overall
	// top agent regardless of threshold" is the same agent.
	_ = minAgentScoreThreshold

	assignment := core.TaskAssignment{
		StepID:            step.StepID,
		AgentID:           best.AgentID,
		AgentName:         best.Name,
		RelevanceScore:    bestScore,
		InputContextHint:  "",
		OutputContextHint: "",
		Priority:          "high",
		Dependencies:      nil,
		Task:              step.Description,
	}
	return []core.AgentDescriptor{best}, []core.TaskAssignment{assignment}, scoreTable
}

func selectMultiAgent(plan core.Plan, agents []core.AgentDescriptor, scoreTable map[string]float64) ([]core.AgentDescriptor, []core.TaskAssignment, map[string]float64) {
	steps := make([]core.WorkflowStep, len(plan.Steps))
	copy(steps, plan.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].ExecutionOrder < steps[j].ExecutionOrder })

	degenerate := len(agents) == 1

	byID := make(map[string]core.AgentDescriptor, len(agents))
	for _, a := range agents {
		byID[a.AgentID] = a
	}

	used := make(map[string]bool)
	var selected []core.AgentDescriptor
	var assignments []core.TaskAssignment
	stepIDByExecOrder := make(map[string]int)
	for _, s := range steps {
		stepIDByExecOrder[s.StepID] = s.ExecutionOrder
	}

	for i, step := range steps {
		candidates := candidatesFor(step, agents, used, degenerate, scoreTable)
		if len(candidates) == 0 {
			continue
		}
		chosen := candidates[0]

		if !degenerate {
			used[chosen.AgentID] = true
		}
		if !containsAgent(selected, chosen.AgentID) {
			selected = append(selected, chosen)
		}

		priority := "medium"
		if i == 0 {
			priority = "high"
		}
		// Carry the plan's own step dependencies through, not a synthetic
		// positional chain: graph.Build (C7) needs the real fan-in/fan-out
		// structure the planner decided, and collapsing it here would make
		// every workflow look linear regardless of what the LLM planned.
		deps := step.Dependencies

		assignments = append(assignments, core.TaskAssignment{
			StepID:         step.StepID,
			AgentID:        chosen.AgentID,
			AgentName:      chosen.Name,
			RelevanceScore: scoreTable[key(step.StepID, chosen.AgentID)],
			Priority:       priority,
			Dependencies:   deps,
			Task:           step.Description,
		})
	}

	return selected, assignments, scoreTable
}

// candidatesFor ranks agents for one step: greedily prefer an unused
// agent scoring >= threshold; failing that, the highest-scoring unused
// agent regardless of threshold; in the degenerate single-agent case,
// reuse is always allowed.
func candidatesFor(step core.WorkflowStep, agents []core.AgentDescriptor, used map[string]bool, degenerate bool, scoreTable map[string]float64) []core.AgentDescriptor {
	var pool []core.AgentDescriptor
	for _, a := range agents {
		if !degenerate && used[a.AgentID] {
			continue
		}
		pool = append(pool, a)
	}
	if len(pool) == 0 {
		return nil
	}

	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := scoreTable[key(step.StepID, pool[i].AgentID)], scoreTable[key(step.StepID, pool[j].AgentID)]
		if si != sj {
			return si > sj
		}
		return pool[i].Name < pool[j].Name
	})

	for _, a := range pool {
		if scoreTable[key(step.StepID, a.AgentID)] >= minAgentScoreThreshold {
			return []core.AgentDescriptor{a}
		}
	}
	return []core.AgentDescriptor{pool[0]}
}

func containsAgent(agents []core.AgentDescriptor, agentID string) bool {
	for _, a := range agents {
		if a.AgentID == agentID {
			return true
		}
	}
	return false
}
