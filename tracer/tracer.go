// Package tracer implements the Observability Tracer (C2): a
// single-mutex-guarded append-only event/handoff log per session, with
// incrementally-updated aggregate metrics and an optional pluggable Sink
// for exporting completed traces.
package tracer

import (
	"sort"
	"sync"
	"time"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/google/uuid"
)

// Metrics is the aggregate, process-wide snapshot returned by Metrics()
// and served at GET /metrics (§11 OrchestratorMetrics).
type Metrics struct {
	TotalSessions        int64              `json:"total_sessions"`
	SuccessfulSessions   int64              `json:"successful_sessions"`
	FailedSessions       int64              `json:"failed_sessions"`
	TotalEvents          int64              `json:"total_events"`
	TotalHandoffs        int64              `json:"total_handoffs"`
	AverageExecutionTime time.Duration      `json:"average_execution_time"`
	AverageHandoffsPerRun float64           `json:"average_handoffs_per_run"`
	AgentUsage           map[string]int64   `json:"agent_usage"`
}

// Tracer is the single shared mutable state of the runtime (§5). All
// mutation goes through its mutex.
type Tracer struct {
	mu        sync.Mutex
	active    map[string]*core.ConversationTrace
	completed map[string]*core.ConversationTrace
	order     []string // completed sessionIDs, oldest first, for ListRecent

	metrics Metrics

	sink   Sink
	logger core.Logger
}

// New creates a Tracer. sink may be nil, in which case NoOpSink is used.
func New(sink Sink, logger core.Logger) *Tracer {
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Tracer{
		active:    make(map[string]*core.ConversationTrace),
		completed: make(map[string]*core.ConversationTrace),
		sink:      sink,
		logger:    logger,
		metrics:   Metrics{AgentUsage: make(map[string]int64)},
	}
}

// StartTrace begins a new active trace and logs its orchestration_start
// event.
func (t *Tracer) StartTrace(sessionID, query string, strategy core.Strategy) *core.ConversationTrace {
	t.mu.Lock()
	defer t.mu.Unlock()

	trace := &core.ConversationTrace{
		SessionID:             sessionID,
		Query:                 query,
		OrchestrationStrategy: strategy,
		StartedAt:             time.Now(),
	}
	t.active[sessionID] = trace
	t.metrics.TotalSessions++

	t.appendEventLocked(trace, core.Event{
		EventType: core.EventOrchestrationStart,
		Content:   query,
		Status:    "started",
	})

	return trace
}

func (t *Tracer) appendEventLocked(trace *core.ConversationTrace, e core.Event) {
	e.EventID = uuid.NewString()
	e.SessionID = trace.SessionID
	e.Timestamp = time.Now()
	trace.Events = append(trace.Events, e)
	t.metrics.TotalEvents++
}

// LogEvent appends e to sessionID's active trace.
func (t *Tracer) LogEvent(sessionID string, e core.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trace, ok := t.active[sessionID]
	if !ok {
		return
	}
	t.appendEventLocked(trace, e)

	if e.AgentID != "" {
		if !containsStr(trace.AgentsInvolved, e.AgentID) {
			trace.AgentsInvolved = append(trace.AgentsInvolved, e.AgentID)
		}
		t.metrics.AgentUsage[e.AgentID]++
	}
}

// StartHandoff opens a new HandoffRecord and logs agent_handoff_start.
func (t *Tracer) StartHandoff(sessionID, fromAgentID, toAgentID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	trace, ok := t.active[sessionID]
	if !ok {
		return ""
	}

	handoffID := uuid.NewString()
	record := core.HandoffRecord{
		HandoffID:     handoffID,
		SessionID:     sessionID,
		FromAgentID:   fromAgentID,
		ToAgentID:     toAgentID,
		HandoffNumber: len(trace.Handoffs) + 1,
		Status:        core.HandoffInProgress,
		StartTime:     time.Now(),
	}
	trace.Handoffs = append(trace.Handoffs, record)
	t.metrics.TotalHandoffs++

	t.appendEventLocked(trace, core.Event{
		EventType: core.EventAgentHandoffStart,
		AgentID:   toAgentID,
		Status:    string(core.HandoffInProgress),
	})

	return handoffID
}

// CompleteHandoff closes handoffID with its outcome.
func (t *Tracer) CompleteHandoff(sessionID, handoffID, output string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trace, ok := t.active[sessionID]
	if !ok {
		return
	}

	for i := range trace.Handoffs {
		h := &trace.Handoffs[i]
		if h.HandoffID != handoffID {
			continue
		}
		h.EndTime = time.Now()
		h.OutputReceived = output
		if err != nil {
			h.Status = core.HandoffFailed
			h.Error = err.Error()
		} else {
			h.Status = core.HandoffCompleted
		}

		t.appendEventLocked(trace, core.Event{
			EventType: core.EventAgentHandoffComplete,
			AgentID:   h.ToAgentID,
			Status:    string(h.Status),
		})
		break
	}
}

// LogContextTransfer records a refined-context handoff snapshot.
func (t *Tracer) LogContextTransfer(sessionID string, snapshot core.ContextTransferSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trace, ok := t.active[sessionID]
	if !ok {
		return
	}
	trace.ContextEvolution = append(trace.ContextEvolution, snapshot)

	t.appendEventLocked(trace, core.Event{
		EventType: core.EventContextTransfer,
		AgentID:   snapshot.ToAgentID,
		Status:    snapshot.Strategy,
	})
}

// CompleteTrace moves sessionID from active to completed, recording the
// terminal orchestration_complete event (status "success" or "failure"),
// updating online averages, and exporting to the sink.
func (t *Tracer) CompleteTrace(sessionID, finalResponse string, success bool) {
	t.mu.Lock()

	trace, ok := t.active[sessionID]
	if !ok {
		t.mu.Unlock()
		return
	}
	delete(t.active, sessionID)

	trace.FinalResponse = finalResponse
	trace.Success = success
	trace.CompletedAt = time.Now()
	trace.TotalExecutionTime = trace.CompletedAt.Sub(trace.StartedAt)

	eventType := core.EventOrchestrationComplete
	status := "success"
	if !success {
		status = "failure"
	}
	t.appendEventLocked(trace, core.Event{EventType: eventType, Status: status})

	t.completed[sessionID] = trace
	t.order = append(t.order, sessionID)

	if success {
		t.metrics.SuccessfulSessions++
	} else {
		t.metrics.FailedSessions++
	}
	t.updateAveragesLocked(trace)

	sink := t.sink
	traceCopy := *trace
	t.mu.Unlock()

	if err := sink.Export(traceCopy); err != nil {
		t.logger.Warn("trace sink export failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
}

func (t *Tracer) updateAveragesLocked(trace *core.ConversationTrace) {
	n := float64(t.metrics.SuccessfulSessions + t.metrics.FailedSessions)
	if n <= 0 {
		return
	}
	prevAvg := t.metrics.AverageExecutionTime
	t.metrics.AverageExecutionTime = time.Duration(float64(prevAvg) + (float64(trace.TotalExecutionTime)-float64(prevAvg))/n)

	prevHandoffAvg := t.metrics.AverageHandoffsPerRun
	t.metrics.AverageHandoffsPerRun = prevHandoffAvg + (float64(len(trace.Handoffs))-prevHandoffAvg)/n
}

// GetTrace returns the trace for sessionID, from either active or
// completed, and whether it was found.
func (t *Tracer) GetTrace(sessionID string) (core.ConversationTrace, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if trace, ok := t.active[sessionID]; ok {
		return *trace, true
	}
	if trace, ok := t.completed[sessionID]; ok {
		return *trace, true
	}
	return core.ConversationTrace{}, false
}

// ListRecent returns up to limit completed traces, most recently
// completed first.
func (t *Tracer) ListRecent(limit int) []core.ConversationTrace {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.order) {
		limit = len(t.order)
	}

	out := make([]core.ConversationTrace, 0, limit)
	for i := len(t.order) - 1; i >= 0 && len(out) < limit; i-- {
		if trace, ok := t.completed[t.order[i]]; ok {
			out = append(out, *trace)
		}
	}
	return out
}

// Metrics returns a snapshot of the aggregate metrics.
func (t *Tracer) Metrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	agentUsage := make(map[string]int64, len(t.metrics.AgentUsage))
	for k, v := range t.metrics.AgentUsage {
		agentUsage[k] = v
	}
	m := t.metrics
	m.AgentUsage = agentUsage
	return m
}

// TraceSummary is the lightweight projection of a ConversationTrace served
// by GET /traces, as opposed to the full trace GET /traces/{sessionID}
// returns.
type TraceSummary struct {
	SessionID      string       `json:"session_id"`
	Query          string       `json:"query"`
	Strategy       core.Strategy `json:"strategy"`
	Success        bool         `json:"success"`
	EventCount     int          `json:"event_count"`
	HandoffCount   int          `json:"handoff_count"`
	AgentsInvolved []string     `json:"agents_involved"`
	StartedAt      time.Time    `json:"started_at"`
	CompletedAt    time.Time    `json:"completed_at,omitempty"`
}

func summarize(trace *core.ConversationTrace) TraceSummary {
	return TraceSummary{
		SessionID:      trace.SessionID,
		Query:          trace.Query,
		Strategy:       trace.OrchestrationStrategy,
		Success:        trace.Success,
		EventCount:     len(trace.Events),
		HandoffCount:   len(trace.Handoffs),
		AgentsInvolved: trace.AgentsInvolved,
		StartedAt:      trace.StartedAt,
		CompletedAt:    trace.CompletedAt,
	}
}

// ListSummaries serves GET /traces: status selects active, completed, or
// both; limit caps the result (0 means unlimited). Active sessions have no
// stable completion order, so they are listed oldest-started-first;
// completed sessions follow ListRecent's newest-first order.
func (t *Tracer) ListSummaries(status string, limit int) []TraceSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []TraceSummary
	if status == "active" || status == "all" || status == "" {
		for _, trace := range t.active {
			out = append(out, summarize(trace))
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	}
	if status == "completed" || status == "all" || status == "" {
		for i := len(t.order) - 1; i >= 0; i-- {
			if trace, ok := t.completed[t.order[i]]; ok {
				out = append(out, summarize(trace))
			}
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// ActiveCount and CompletedCount back GET /health.
func (t *Tracer) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

func (t *Tracer) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
