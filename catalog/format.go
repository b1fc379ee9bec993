package catalog

import (
	"fmt"
	"strings"
)

// FormatForLLM renders the active agent snapshot as plain text suitable for
// inclusion in the query planner's prompt (§4.1): name, domain,
// specialization and capabilities, so the reasoning LLM can pick required
// capabilities it knows are actually satisfiable.
func FormatForLLM(agents []AgentSummaryView) string {
	var b strings.Builder
	b.WriteString("Available Agents and Capabilities:\n\n")

	for _, a := range agents {
		b.WriteString(fmt.Sprintf("Agent: %s (ID: %s)\n", a.Name, a.AgentID))
		if a.Domain != "" {
			b.WriteString(fmt.Sprintf("  Domain: %s\n", a.Domain))
		}
		if a.Specialization != "" {
			b.WriteString(fmt.Sprintf("  Specialization: %s\n", a.Specialization))
		}
		if len(a.Capabilities) > 0 {
			b.WriteString(fmt.Sprintf("  Capabilities: %s\n", strings.Join(a.Capabilities, ", ")))
		}
		if len(a.Keywords) > 0 {
			b.WriteString(fmt.Sprintf("  Keywords: %s\n", strings.Join(a.Keywords, ", ")))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// AgentSummaryView is the minimal projection of an AgentDescriptor needed
// to render a planning prompt; kept separate from core.AgentDescriptor so
// callers can filter/redact before formatting.
type AgentSummaryView struct {
	AgentID        string
	Name           string
	Domain         string
	Specialization string
	Capabilities   []string
	Keywords       []string
}

// SummaryViews projects a Store snapshot into AgentSummaryView values.
func (s *Store) SummaryViews() []AgentSummaryView {
	agents := s.Snapshot()
	out := make([]AgentSummaryView, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentSummaryView{
			AgentID:        a.AgentID,
			Name:           a.Name,
			Domain:         a.Domain,
			Specialization: a.Specialization,
			Capabilities:   a.Capabilities,
			Keywords:       a.Keywords,
		})
	}
	return out
}
