package tracer

import (
	"errors"
	"testing"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTraceLogsOrchestrationStart(t *testing.T) {
	tr := New(nil, nil)
	trace := tr.StartTrace("s1", "hello", core.StrategySingle)
	require.Len(t, trace.Events, 1)
	assert.Equal(t, core.EventOrchestrationStart, trace.Events[0].EventType)
}

func TestHandoffLifecycle(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySequential)

	id := tr.StartHandoff("s1", "", "a1")
	require.NotEmpty(t, id)

	tr.CompleteHandoff("s1", id, "done", nil)

	trace, ok := tr.GetTrace("s1")
	require.True(t, ok)
	require.Len(t, trace.Handoffs, 1)
	assert.Equal(t, core.HandoffCompleted, trace.Handoffs[0].Status)
	assert.False(t, trace.Handoffs[0].EndTime.IsZero())
}

func TestHandoffFailureRecordsError(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySequential)
	id := tr.StartHandoff("s1", "", "a1")
	tr.CompleteHandoff("s1", id, "", errors.New("boom"))

	trace, _ := tr.GetTrace("s1")
	assert.Equal(t, core.HandoffFailed, trace.Handoffs[0].Status)
	assert.Equal(t, "boom", trace.Handoffs[0].Error)
}

func TestCompleteTraceMovesFromActiveToCompleted(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	assert.Equal(t, 1, tr.ActiveCount())

	tr.CompleteTrace("s1", "final", true)
	assert.Equal(t, 0, tr.ActiveCount())
	assert.Equal(t, 1, tr.CompletedCount())

	trace, ok := tr.GetTrace("s1")
	require.True(t, ok)
	assert.True(t, trace.Success)
	assert.Equal(t, "final", trace.FinalResponse)
}

func TestMetricsCountersMonotonic(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	tr.CompleteTrace("s1", "r", true)
	m1 := tr.Metrics()

	tr.StartTrace("s2", "q2", core.StrategySingle)
	tr.CompleteTrace("s2", "r2", false)
	m2 := tr.Metrics()

	assert.GreaterOrEqual(t, m2.TotalSessions, m1.TotalSessions)
	assert.GreaterOrEqual(t, m2.TotalEvents, m1.TotalEvents)
	assert.Equal(t, int64(1), m2.SuccessfulSessions)
	assert.Equal(t, int64(1), m2.FailedSessions)
}

func TestListSummariesFiltersByStatus(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	tr.CompleteTrace("s1", "r", true)
	tr.StartTrace("s2", "q2", core.StrategySingle)

	active := tr.ListSummaries("active", 0)
	require.Len(t, active, 1)
	assert.Equal(t, "s2", active[0].SessionID)

	completed := tr.ListSummaries("completed", 0)
	require.Len(t, completed, 1)
	assert.Equal(t, "s1", completed[0].SessionID)

	all := tr.ListSummaries("all", 0)
	assert.Len(t, all, 2)
}

func TestListRecentOrdersNewestFirst(t *testing.T) {
	tr := New(nil, nil)
	tr.StartTrace("s1", "q", core.StrategySingle)
	tr.CompleteTrace("s1", "r", true)
	tr.StartTrace("s2", "q", core.StrategySingle)
	tr.CompleteTrace("s2", "r", true)

	recent := tr.ListRecent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "s2", recent[0].SessionID)
	assert.Equal(t, "s1", recent[1].SessionID)
}
