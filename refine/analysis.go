package refine

import "strings"

// analysis is the (possibly heuristic) context analysis strategy
// selection is driven from: how dense the complexity is, how much of the
// text is distinct content, and an overall quality estimate.
type analysis struct {
	Complexity float64
	Density    float64
	Quality    float64
}

// analyzeHeuristic derives an analysis directly from the text, used
// whenever no LLM-produced analysis is available (the spec names this as
// an alternate input to strategy selection, not a required LLM round
// trip).
func analyzeHeuristic(text string) analysis {
	words := strings.Fields(text)
	total := len(words)

	seen := make(map[string]bool, total)
	for _, w := range words {
		seen[strings.ToLower(w)] = true
	}

	density := 1.0
	if total > 0 {
		density = float64(len(seen)) / float64(total)
	}

	complexity := float64(len(text)) / 2000.0
	if complexity > 1 {
		complexity = 1
	}

	quality := estimateQuality(text, total)

	return analysis{Complexity: complexity, Density: density, Quality: quality}
}

// estimateQuality is a coarse heuristic: longer, punctuated, lexically
// varied text scores higher, very short or empty text scores near zero.
func estimateQuality(text string, wordCount int) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	q := 0.4
	if wordCount >= 5 {
		q += 0.2
	}
	if wordCount >= 20 {
		q += 0.2
	}
	if strings.ContainsAny(trimmed, ".!?") {
		q += 0.2
	}
	if q > 1 {
		q = 1
	}
	return q
}
