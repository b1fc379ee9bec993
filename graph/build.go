package graph

import "github.com/ashfrnndz21/agentmesh/core"

// BuildInput collects the two edge sources the component design names:
// the capability-dependency configuration table, and the explicit step
// dependencies carried by the plan once steps are bound to agents.
type BuildInput struct {
	// SelectedAgentIDs seeds one node per agent, even if it ends up with
	// no edges (a fully independent plan still produces a DAG of isolated
	// nodes, which the scheduler reads as "parallel").
	SelectedAgentIDs []string

	// AgentCapabilities maps agentID -> the capabilities it was matched on.
	AgentCapabilities map[string][]string

	// CapabilityDependencies maps a capability name to the capabilities it
	// requires to run first (core.Config.CapabilityDependencies).
	CapabilityDependencies map[string][]string

	// StepAgent maps a plan stepID to the agentID bound to that step.
	StepAgent map[string]string

	// StepDependencies maps a plan stepID to the stepIDs it depends on
	// (WorkflowStep.Dependencies).
	StepDependencies map[string][]string

	// AgentScores maps agentID -> its matcher relevance score, used as the
	// edge weight when a cycle must be repaired.
	AgentScores map[string]float64
}

// Build derives the dependency DAG for one session and, while a cycle
// remains, repeatedly breaks the graph's lowest-combined-score edge, per
// §4.3. The edge broken is not required to lie on the cycle. It
// returns the DAG together with the observability events the caller
// (the tracer, via the orchestrator) should log: one error_occurred event
// per broken edge.
func Build(in BuildInput) (*DAG, []core.Event) {
	d := New()
	for _, id := range in.SelectedAgentIDs {
		d.AddNode(id)
	}

	// Edge source 1: capability dependencies. For every selected agent A
	// holding a capability that requires capability C, every other
	// selected agent providing C must run first.
	capabilityProviders := make(map[string][]string)
	for agentID, caps := range in.AgentCapabilities {
		for _, c := range caps {
			capabilityProviders[c] = append(capabilityProviders[c], agentID)
		}
	}
	for agentID, caps := range in.AgentCapabilities {
		for _, c := range caps {
			for _, required := range in.CapabilityDependencies[c] {
				for _, provider := range capabilityProviders[required] {
					if provider != agentID {
						d.AddEdge(provider, agentID)
					}
				}
			}
		}
	}

	// Edge source 2: explicit step dependencies from the plan, mapped
	// through the step->agent binding.
	for stepID, deps := range in.StepDependencies {
		toAgent, ok := in.StepAgent[stepID]
		if !ok {
			continue
		}
		for _, depStepID := range deps {
			fromAgent, ok := in.StepAgent[depStepID]
			if !ok || fromAgent == toAgent {
				continue
			}
			d.AddEdge(fromAgent, toAgent)
		}
	}

	var events []core.Event
	for d.HasCycle() {
		broken, ok := d.BreakLowestWeightEdge(in.AgentScores)
		if !ok {
			break
		}
		events = append(events, core.Event{
			EventType: core.EventErrorOccurred,
			Content:   "dependency_cycle: broke edge " + broken.From + " -> " + broken.To + " to restore acyclicity",
			Status:    "repaired",
		})
	}

	return d, events
}
