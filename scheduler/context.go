package scheduler

import "strings"

const dependencyOutputTruncateLen = 800

// depOutput is one upstream dependency's contribution to a downstream
// agent's input, already passed through C4 refinement (or the failure
// note substituted when the upstream step did not succeed).
type depOutput struct {
	AgentName string
	Text      string
	Failed    bool
}

// prepareInput builds the text sent to one agent, per §4.7. Step 1 of any
// plan always receives the original query verbatim. Later steps receive
// their own task description (falling back to the query when the plan
// left it blank) plus a context block listing every dependency's
// refined output, present only when at least one dependency contributed
// non-empty text or a failure note.
func prepareInput(task agentTask, query string, isFirstStep bool, deps []depOutput) string {
	if isFirstStep {
		return query
	}

	base := task.Task
	if strings.TrimSpace(base) == "" {
		base = query
	}

	var block strings.Builder
	any := false
	for _, d := range deps {
		if d.Failed {
			any = true
			block.WriteString("Previous Agent (" + d.AgentName + ") Output:\n(unavailable - upstream step failed)\n")
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		any = true
		block.WriteString("Previous Agent (" + d.AgentName + ") Output:\n" + truncate(d.Text, dependencyOutputTruncateLen) + "\n")
	}
	if !any {
		return base
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\nCONTEXT FROM PREVIOUS AGENTS:\n")
	b.WriteString(block.String())
	b.WriteString("\nINSTRUCTIONS:\n")
	b.WriteString("- Build upon the previous output; do not repeat it.\n")
	b.WriteString("- Your task is distinct; focus on your assignment.\n")
	b.WriteString("- Do not duplicate information already present upstream.\n")
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
