package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison via errors.Is. Each maps to one of the
// error kinds named in the runtime's error handling design.
var (
	// ErrNoSteps is returned when the planner cannot produce a Plan with at
	// least one workflow step, after both the LLM and the heuristic
	// fallback have been tried.
	ErrNoSteps = errors.New("plan has no steps")

	// ErrNoAgentsAvailable is returned when the matcher has no registered
	// agents to choose from.
	ErrNoAgentsAvailable = errors.New("no agents available")

	// ErrNoSuitableAgent is returned when agents are registered but none
	// can be selected for a required step.
	ErrNoSuitableAgent = errors.New("no suitable agent for step")

	// ErrCycleUnresolvable is returned when the dependency graph builder
	// cannot restore acyclicity by breaking a single edge.
	ErrCycleUnresolvable = errors.New("dependency cycle could not be resolved")

	// ErrSessionCancelled is returned when a session is cancelled before
	// any agent produced output, so synthesis cannot proceed even
	// partially.
	ErrSessionCancelled = errors.New("session cancelled")

	// ErrAgentInvocation wraps a transport or worker-side failure of a
	// single agent invocation.
	ErrAgentInvocation = errors.New("agent invocation failed")

	// ErrAgentTimeout marks an agent invocation that exceeded its deadline.
	ErrAgentTimeout = errors.New("agent invocation timed out")

	// ErrSynthesis wraps a failure of the final synthesis step; callers
	// should fall back to deterministic concatenation rather than
	// propagate this.
	ErrSynthesis = errors.New("synthesis failed")

	// ErrSessionNotFound is returned by the tracer/session memory lookups.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidConfiguration flags a configuration value that could not
	// be parsed or is out of range.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCircuitBreakerOpen is returned by the invoker's per-agent circuit
	// breaker (resilience.CircuitBreaker) when it is rejecting calls.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded wraps the terminal error of resilience.Retry
	// once its attempt budget is exhausted.
	ErrMaxRetriesExceeded = errors.New("max retry attempts exceeded")
)

// OrchestrationError is a structured error carrying the operation, error
// kind, and session that failed, wrapping an underlying cause. It is the Go
// value representation of the error kinds named in the error handling
// design: every component-boundary failure that must be distinguishable by
// the scheduler (retry vs. continue vs. abort) is returned as one of these.
type OrchestrationError struct {
	Op        string // e.g. "planner.Plan", "scheduler.Run"
	Kind      string // e.g. "PlanError", "AgentTimeout", "CycleDetected"
	SessionID string
	Message   string
	Err       error
}

func (e *OrchestrationError) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		if e.SessionID != "" {
			return fmt.Sprintf("%s [session=%s]: %v", e.Op, e.SessionID, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *OrchestrationError) Unwrap() error { return e.Err }

// NewOrchestrationError builds an OrchestrationError for the given
// operation/kind, wrapping err.
func NewOrchestrationError(op, kind, sessionID string, err error) *OrchestrationError {
	return &OrchestrationError{Op: op, Kind: kind, SessionID: sessionID, Err: err}
}

// IsRetryable reports whether err represents a transient failure that the
// scheduler's retry policy should act on.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrAgentInvocation) || errors.Is(err, ErrAgentTimeout)
}

// IsTimeout reports whether err is (or wraps) an agent timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrAgentTimeout)
}

// IsNotFound reports whether err is (or wraps) a not-found condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuitableAgent) || errors.Is(err, ErrSessionNotFound)
}

// IsConfigurationError reports whether err is configuration-related and so
// should never be retried.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
