package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanStripsReasoningTags(t *testing.T) {
	raw := "<think>internal deliberation</think>\nHere is your answer."
	assert.Equal(t, "Here is your answer.", Clean(raw))
}

func TestCleanStripsVerificationBanners(t *testing.T) {
	raw := "✅ Source: WeatherAgent\n✅ Agent ID: a1\nThe forecast is sunny."
	assert.Equal(t, "The forecast is sunny.", Clean(raw))
}

func TestCleanStripsMultiLineSelfHealingBlock(t *testing.T) {
	raw := "TASK_DECOMPOSITION:\nstep 1: fetch data\nstep 2: summarize\nstep 3: respond\n\nThe forecast is sunny."
	assert.Equal(t, "The forecast is sunny.", Clean(raw))
}

func TestCleanStripsDebugLines(t *testing.T) {
	raw := "[DEBUG] entering handler\nActual content here."
	assert.Equal(t, "Actual content here.", Clean(raw))
}

func TestCleanCollapsesBlankRuns(t *testing.T) {
	raw := "first\n\n\n\n\nsecond"
	assert.Equal(t, "first\n\nsecond", Clean(raw))
}

func TestCleanHTMLUnescapes(t *testing.T) {
	raw := "Tom &amp; Jerry"
	assert.Equal(t, "Tom & Jerry", Clean(raw))
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"<think>x</think>\n\n\n\nplain text &amp; more",
		"✅ Timestamp: now\nresult",
		"[ERROR] boom\nresult text",
		"plain text with no noise at all",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		assert.Equal(t, once, twice, "Clean must be idempotent for input %q", in)
	}
}
