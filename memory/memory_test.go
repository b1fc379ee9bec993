package memory

import (
	"testing"

	"github.com/ashfrnndz21/agentmesh/clean"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStoresRawAndCleanedSeparately(t *testing.T) {
	m := New()
	raw := "<think>internal</think>\nThe answer is 42."
	m.Record("WeatherAgent", raw)

	gotRaw, ok := m.Raw("WeatherAgent")
	require.True(t, ok)
	assert.Equal(t, raw, gotRaw)

	gotCleaned, ok := m.Cleaned("WeatherAgent")
	require.True(t, ok)
	assert.Equal(t, clean.Clean(raw), gotCleaned)
	assert.NotEqual(t, gotRaw, gotCleaned)
}

func TestAgentNamesPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.Record("Second", "x")
	m.Record("First", "y")
	m.Record("Second", "z") // re-record must not duplicate order entry

	assert.Equal(t, []string{"Second", "First"}, m.AgentNames())
}

func TestReflectProducesPerAgentAnalysis(t *testing.T) {
	m := New()
	m.Record("A", "short")
	m.Record("B", "")

	analyses := m.Reflect()
	require.Len(t, analyses, 2)
	assert.Equal(t, "A", analyses[0].AgentName)
	assert.NotEmpty(t, analyses[1].Recommendations, "empty output should be flagged")
}
