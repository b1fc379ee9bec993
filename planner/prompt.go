package planner

import (
	"fmt"
	"strings"
)

// BuildPrompt renders the planning prompt sent to the reasoning LLM: the
// catalog summary (already formatted by catalog.FormatForLLM) plus the
// user's query and the JSON schema the LLM must fill in.
func BuildPrompt(catalogInfo, query string) string {
	var b strings.Builder
	b.WriteString("You are the planning stage of a multi-agent orchestrator. ")
	b.WriteString("Decompose the user's request into an ordered sequence of workflow steps, ")
	b.WriteString("each naming the single capability it requires.\n\n")
	b.WriteString("Available agents:\n")
	b.WriteString(catalogInfo)
	b.WriteString("\n\nUser request:\n")
	b.WriteString(query)
	b.WriteString("\n\nRespond with ONLY a JSON object, no markdown, no commentary, matching:\n")
	b.WriteString(`{
  "intent": "...",
  "domain": "...",
  "complexity": "simple|moderate|complex",
  "workflow_pattern": "single_agent|multi_agent|varying_domain",
  "orchestration_strategy": "single|sequential|parallel|hybrid",
  "steps": [
    {"step_id": "step-1", "description": "...", "required_capability": "...", "execution_order": 1, "dependencies": []}
  ],
  "success_criteria": "...",
  "reasoning": "..."
}`)
	return b.String()
}

// buildRepairPrompt is the extra repair tier (§12): when the first
// response fails to parse, the planner asks again with the parse error
// spelled out, grounded on the teacher's buildPlanningPromptWithParseError.
func buildRepairPrompt(catalogInfo, query string, parseErr error) string {
	base := BuildPrompt(catalogInfo, query)
	feedback := fmt.Sprintf(
		"IMPORTANT: your previous response could not be parsed as JSON (%s). "+
			"Respond again with ONLY a valid JSON object: no markdown fences, no trailing commas, no commentary.\n\n",
		parseErr.Error())
	return feedback + base
}
