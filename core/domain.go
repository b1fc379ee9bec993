// Package core holds the data model shared by every orchestration
// component (the query planner, matcher, dependency graph builder,
// scheduler, session memory, synthesizer and tracer) plus the two
// interfaces through which the runtime reaches external collaborators.
package core

import (
	"context"
	"time"
)

// AgentInvoker is the single capability the runtime needs from the
// external Worker Agent Service: execute a prompt on a specific agent and
// return its raw text plus any tool names it reports using.
type AgentInvoker interface {
	Invoke(ctx context.Context, agentID string, prompt string) (text string, toolsUsed []string, err error)
}

// ReasoningLLM is the orchestrator's own "reasoning" model, used for
// planning, context refinement and synthesis. It is abstracted away from
// any concrete provider.
type ReasoningLLM interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// CompletionOptions configures a single ReasoningLLM call.
type CompletionOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// AgentStatus is the lifecycle state of a registered agent.
type AgentStatus string

const (
	AgentStatusActive   AgentStatus = "active"
	AgentStatusInactive AgentStatus = "inactive"
)

// AgentDescriptor is a snapshot of a registered worker agent: stable
// identity, advertised capabilities, and the opaque backend endpoint the
// external worker service resolves invocations against. Immutable for the
// duration of a session.
type AgentDescriptor struct {
	AgentID                 string   `json:"agent_id"`
	Name                    string   `json:"name"`
	Model                   string   `json:"model"`
	Capabilities            []string `json:"capabilities"`
	Keywords                []string `json:"keywords"`
	Domain                  string   `json:"domain"`
	Specialization          string   `json:"specialization"`
	Status                  AgentStatus `json:"status"`
	BackendEndpoint         string   `json:"backend_endpoint"`
	MaxContextLength        int      `json:"max_context_length"`
	PreferredContextFormat  string   `json:"preferred_context_format"`
}

// DefaultMaxContextLength is used when an AgentDescriptor omits one.
const DefaultMaxContextLength = 1000

// Complexity classifies how demanding a plan is.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// WorkflowPattern classifies the shape of the plan's agent involvement.
type WorkflowPattern string

const (
	WorkflowSingleAgent   WorkflowPattern = "single_agent"
	WorkflowMultiAgent    WorkflowPattern = "multi_agent"
	WorkflowVaryingDomain WorkflowPattern = "varying_domain"
)

// Strategy is the scheduler's dispatch mode.
type Strategy string

const (
	StrategySingle     Strategy = "single"
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
	StrategyHybrid     Strategy = "hybrid"
)

// WorkflowStep is one node of a Plan: a unit of work with a required
// capability and an ordering/dependency relationship to other steps.
type WorkflowStep struct {
	StepID             string   `json:"step_id"`
	Description        string   `json:"description"`
	RequiredCapability string   `json:"required_capability"`
	ExecutionOrder     int      `json:"execution_order"`
	Dependencies       []string `json:"dependencies"`
}

// Plan is the structured decomposition of a user query, produced by the
// query planner (C5) and consumed by the matcher, graph builder and
// scheduler. Immutable once validated.
type Plan struct {
	Query                  string          `json:"query"`
	Intent                 string          `json:"intent"`
	Domain                 string          `json:"domain"`
	Complexity             Complexity      `json:"complexity"`
	WorkflowPattern        WorkflowPattern `json:"workflow_pattern"`
	OrchestrationStrategy  Strategy        `json:"orchestration_strategy"`
	Steps                  []WorkflowStep  `json:"steps"`
	SuccessCriteria        string          `json:"success_criteria"`
	Reasoning              string          `json:"reasoning"`
	MultiDomain            bool            `json:"multi_domain"`
	CreatedAt              time.Time       `json:"created_at"`
}

// TaskAssignment binds one workflow step to the agent selected to perform
// it, produced by the matcher (C6).
type TaskAssignment struct {
	StepID            string  `json:"step_id"`
	AgentID           string  `json:"agent_id"`
	AgentName         string  `json:"agent_name"`
	RelevanceScore    float64 `json:"relevance_score"`
	InputContextHint  string  `json:"input_context_hint"`
	OutputContextHint string  `json:"output_context_hint"`
	Priority          string  `json:"priority"`
	Dependencies      []string `json:"dependencies"`
	Task              string  `json:"task"`
}

// ExecutionStatus is the lifecycle state of a per-agent execution record.
type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusRunning   ExecutionStatus = "running"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
	StatusCancelled ExecutionStatus = "cancelled"
	StatusTimeout   ExecutionStatus = "timeout"
)

// AgentExecutionRecord is the per-session, per-agent outcome of a worker
// invocation.
type AgentExecutionRecord struct {
	AgentID       string          `json:"agent_id"`
	AgentName     string          `json:"agent_name"`
	RawOutput     string          `json:"raw_output"`
	CleanedOutput string          `json:"cleaned_output"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	ExecutionTime time.Duration   `json:"execution_time"`
	Status        ExecutionStatus `json:"status"`
	Error         string          `json:"error,omitempty"`
	QualityScore  float64         `json:"quality_score"`
	ToolsUsed     []string        `json:"tools_used"`
}

// HandoffStatus is the lifecycle state of a HandoffRecord.
type HandoffStatus string

const (
	HandoffPending    HandoffStatus = "pending"
	HandoffInProgress HandoffStatus = "in_progress"
	HandoffCompleted  HandoffStatus = "completed"
	HandoffFailed     HandoffStatus = "failed"
	HandoffTimeout    HandoffStatus = "timeout"
)

// HandoffRecord is the observability record of one orchestrator→agent
// invocation.
type HandoffRecord struct {
	HandoffID           string        `json:"handoff_id"`
	SessionID           string        `json:"session_id"`
	FromAgentID         string        `json:"from_agent_id"`
	ToAgentID           string        `json:"to_agent_id"`
	HandoffNumber       int           `json:"handoff_number"`
	Status              HandoffStatus `json:"status"`
	StartTime           time.Time     `json:"start_time"`
	EndTime             time.Time     `json:"end_time"`
	ContextTransferred  string        `json:"context_transferred"`
	InputPrepared       string        `json:"input_prepared"`
	OutputReceived      string        `json:"output_received"`
	ToolsUsed           []string      `json:"tools_used"`
	Error               string        `json:"error,omitempty"`
}

// EventType enumerates the append-only observability event kinds.
type EventType string

const (
	EventOrchestrationStart    EventType = "orchestration_start"
	EventQueryAnalysis         EventType = "query_analysis"
	EventAgentSelection        EventType = "agent_selection"
	EventAgentHandoffStart     EventType = "agent_handoff_start"
	EventAgentHandoffComplete  EventType = "agent_handoff_complete"
	EventContextTransfer       EventType = "context_transfer"
	EventAgentExecutionStart   EventType = "agent_execution_start"
	EventAgentExecutionComplete EventType = "agent_execution_complete"
	EventToolUsage             EventType = "tool_usage"
	EventErrorOccurred         EventType = "error_occurred"
	EventOrchestrationComplete EventType = "orchestration_complete"
	EventResponseSynthesis     EventType = "response_synthesis"
)

// Event is a single append-only trace entry.
type Event struct {
	EventID       string                 `json:"event_id"`
	SessionID     string                 `json:"session_id"`
	EventType     EventType              `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	AgentID       string                 `json:"agent_id,omitempty"`
	Content       string                 `json:"content,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	ExecutionTime time.Duration          `json:"execution_time,omitempty"`
	Status        string                 `json:"status,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// ContextTransferSnapshot records one refined-context handoff for context
// evolution reporting.
type ContextTransferSnapshot struct {
	FromAgentID string    `json:"from_agent_id"`
	ToAgentID   string    `json:"to_agent_id"`
	Strategy    string    `json:"strategy"`
	OriginalLen int       `json:"original_len"`
	RefinedLen  int       `json:"refined_len"`
	Quality     float64   `json:"quality"`
	Timestamp   time.Time `json:"timestamp"`
}

// OrchestratorResponse is the top-level result of one Orchestrate call,
// returned to the HTTP boundary as the `/orchestrate` response body.
type OrchestratorResponse struct {
	Success         bool               `json:"success"`
	SessionID       string             `json:"session_id"`
	Response        string             `json:"response"`
	Plan            Plan               `json:"plan"`
	SelectedAgents  []string           `json:"selected_agents"`
	ExecutionDetails []AgentExecutionRecord `json:"execution_details"`
	Trace           ConversationTrace  `json:"trace"`
	Partial         bool               `json:"partial,omitempty"`
	Error           string             `json:"error,omitempty"`
}

// ConversationTrace aggregates everything observed during one session.
type ConversationTrace struct {
	SessionID             string                    `json:"session_id"`
	Query                 string                    `json:"query"`
	OrchestrationStrategy Strategy                  `json:"orchestration_strategy"`
	Events                []Event                   `json:"events"`
	Handoffs              []HandoffRecord           `json:"handoffs"`
	AgentsInvolved        []string                  `json:"agents_involved"`
	ContextEvolution      []ContextTransferSnapshot `json:"context_evolution"`
	FinalResponse         string                    `json:"final_response,omitempty"`
	TotalExecutionTime    time.Duration              `json:"total_execution_time"`
	Success               bool                      `json:"success"`
	StartedAt             time.Time                 `json:"started_at"`
	CompletedAt           time.Time                 `json:"completed_at,omitempty"`
}
