package scheduler

import "github.com/ashfrnndz21/agentmesh/core"

// determineStrategy applies the §4.4 ordered rules: an explicit
// sequential/parallel/hybrid plan strategy is honored as-is (DAG edges are
// enforced later, at dispatch time, by downgrading parallel to hybrid);
// otherwise a single_agent workflow pattern forces single; otherwise the
// number of selected agents and whether the DAG has edges decide between
// parallel and sequential.
func determineStrategy(plan core.Plan, dagHasEdges bool, numSelected int) core.Strategy {
	switch plan.OrchestrationStrategy {
	case core.StrategySequential, core.StrategyParallel, core.StrategyHybrid:
		return plan.OrchestrationStrategy
	}

	if plan.WorkflowPattern == core.WorkflowSingleAgent {
		return core.StrategySingle
	}

	if numSelected > 1 {
		if !dagHasEdges {
			return core.StrategyParallel
		}
		return core.StrategySequential
	}
	return core.StrategySequential
}
