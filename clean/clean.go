// Package clean implements the Text Cleaner (C3): a deterministic,
// idempotent pipeline that turns a worker agent's raw LLM output into
// user-safe text. It is the single source of truth for "cleaned" output;
// every downstream consumer (session memory reads, the final synthesizer)
// only ever sees the result of Clean.
package clean

import (
	"html"
	"regexp"
	"strings"
)

var (
	thinkBlockRe     = regexp.MustCompile(`(?is)<think>.*?</think>`)
	reasoningBlockRe = regexp.MustCompile(`(?is)<reasoning>.*?</reasoning>`)
	analysisBlockRe  = regexp.MustCompile(`(?is)<analysis>.*?</analysis>`)

	fencedJSONOrTextRe = regexp.MustCompile("(?s)```(?:json|text)\\s*\\n?(.*?)```")

	selfHealingBlockRe = regexp.MustCompile(`(?ms)^(TASK_DECOMPOSITION:|Error Context:|No specific task was assigned).*?(\n\s*\n|\z)`)

	verificationBannerLineRe = regexp.MustCompile(`(?m)^(✅ Source:|✅ Agent ID:|✅ A2A Handoff:|✅ Timestamp:).*$\n?`)
	verificationBlockHeadRe  = regexp.MustCompile(`(?s)🔍 Authentic Agent Output Verification:.*?(\n\s*\n|$)`)

	debugLineRe = regexp.MustCompile(`(?m)^\[[A-Z]+\].*$\n?`)

	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// Clean applies the deterministic cleaning pipeline in the order fixed by
// the component design. It is total: it never errors, and it is
// idempotent: Clean(Clean(x)) == Clean(x) for all x.
func Clean(raw string) string {
	s := raw

	// 1. Strip reasoning/meta blocks.
	s = thinkBlockRe.ReplaceAllString(s, "")
	s = reasoningBlockRe.ReplaceAllString(s, "")
	s = analysisBlockRe.ReplaceAllString(s, "")

	// 2. Unwrap fenced json/text code blocks that wrap the entire reply in
	// a serialization envelope, rather than presenting genuine code.
	if isWrapperFence(s) {
		s = fencedJSONOrTextRe.ReplaceAllString(s, "$1")
	}

	// 3. Strip self-healing diagnostic artifacts.
	s = selfHealingBlockRe.ReplaceAllString(s, "")

	// 4. Strip verification banners.
	s = verificationBannerLineRe.ReplaceAllString(s, "")
	s = verificationBlockHeadRe.ReplaceAllString(s, "")

	// 5. Strip debug lines.
	s = debugLineRe.ReplaceAllString(s, "")

	// 6. Collapse 3+ consecutive newlines to 2, trim.
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)

	// 7. HTML-unescape.
	s = html.UnescapeString(s)

	return s
}

// isWrapperFence reports whether the text is predominantly a single fenced
// json/text block (an envelope), as opposed to prose that happens to
// contain a genuine code sample worth preserving.
func isWrapperFence(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "```json") || strings.HasPrefix(trimmed, "```text")
}
