package planner

import (
	"encoding/json"
	"fmt"

	"github.com/ashfrnndz21/agentmesh/core"
)

// rawStep and rawPlan mirror the JSON schema the prompt asks the LLM to
// fill in (snake_case field names).
type rawStep struct {
	StepID             string   `json:"step_id"`
	Description        string   `json:"description"`
	RequiredCapability string   `json:"required_capability"`
	ExecutionOrder     int      `json:"execution_order"`
	Dependencies       []string `json:"dependencies"`
}

type rawPlan struct {
	Intent                string    `json:"intent"`
	Domain                string    `json:"domain"`
	Complexity            string    `json:"complexity"`
	WorkflowPattern        string    `json:"workflow_pattern"`
	OrchestrationStrategy string    `json:"orchestration_strategy"`
	Steps                 []rawStep `json:"steps"`
	SuccessCriteria        string    `json:"success_criteria"`
	Reasoning              string    `json:"reasoning"`
}

// parseLLMResponse runs the forgiving extractor then unmarshals into the
// domain Plan type.
func parseLLMResponse(query, response string) (core.Plan, error) {
	jsonStr, ok := ExtractJSON(response)
	if !ok {
		return core.Plan{}, fmt.Errorf("no JSON object found in planner response")
	}

	var rp rawPlan
	if err := json.Unmarshal([]byte(jsonStr), &rp); err != nil {
		return core.Plan{}, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	steps := make([]core.WorkflowStep, len(rp.Steps))
	for i, s := range rp.Steps {
		steps[i] = core.WorkflowStep{
			StepID:             s.StepID,
			Description:        s.Description,
			RequiredCapability: s.RequiredCapability,
			ExecutionOrder:     s.ExecutionOrder,
			Dependencies:       s.Dependencies,
		}
	}

	return core.Plan{
		Query:                 query,
		Intent:                rp.Intent,
		Domain:                rp.Domain,
		Complexity:            core.Complexity(rp.Complexity),
		WorkflowPattern:       core.WorkflowPattern(rp.WorkflowPattern),
		OrchestrationStrategy: core.Strategy(rp.OrchestrationStrategy),
		Steps:                 steps,
		SuccessCriteria:       rp.SuccessCriteria,
		Reasoning:             rp.Reasoning,
	}, nil
}
