package memory

import "strings"

// QualityAnalysis is the per-agent quality summary Reflect aggregates.
type QualityAnalysis struct {
	AgentName        string   `json:"agent_name"`
	WordCount        int      `json:"word_count"`
	CharCount        int      `json:"char_count"`
	HasStructure     bool     `json:"has_structure"`
	CompletenessRatio float64 `json:"completeness_ratio"`
	Recommendations  []string `json:"recommendations"`
}

// structuralMarkers are the lightweight signals Reflect treats as
// evidence of deliberately structured output (lists, headers), as
// opposed to an unstructured prose blob.
var structuralMarkers = []string{"\n- ", "\n* ", "\n1.", "\n#", ":\n"}

func analyze(agentName, cleanedText string) QualityAnalysis {
	words := len(strings.Fields(cleanedText))
	chars := len(cleanedText)

	hasStructure := false
	for _, marker := range structuralMarkers {
		if strings.Contains(cleanedText, marker) {
			hasStructure = true
			break
		}
	}

	completeness := completenessRatio(words)

	var recs []string
	if words == 0 {
		recs = append(recs, "agent produced no usable output")
	} else if words < 10 {
		recs = append(recs, "output is unusually short; verify the agent addressed the full task")
	}
	if !hasStructure && words > 60 {
		recs = append(recs, "long unstructured output; consider asking the agent for a structured format")
	}

	return QualityAnalysis{
		AgentName:         agentName,
		WordCount:         words,
		CharCount:         chars,
		HasStructure:      hasStructure,
		CompletenessRatio: completeness,
		Recommendations:   recs,
	}
}

// completenessRatio is a coarse [0,1] estimate of how "finished" a reply
// looks: it rewards substantive length up to a saturation point of 150
// words. It is computed from the word count alone; punctuation and
// apparent truncation are not inspected.
func completenessRatio(words int) float64 {
	if words == 0 {
		return 0
	}
	lengthScore := float64(words) / 150.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	return lengthScore
}

// Reflect produces the session-wide quality summary: one QualityAnalysis
// per recorded agent, in recording order.
func (m *SessionMemory) Reflect() []QualityAnalysis {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]QualityAnalysis, 0, len(m.order))
	for _, name := range m.order {
		if a, ok := m.analysis[name]; ok {
			out = append(out, a)
		}
	}
	return out
}
