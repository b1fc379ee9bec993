// Package scheduler implements the Execution Scheduler (C8): it decides a
// dispatch strategy for a matched plan, runs each assigned agent through its
// invoke-with-retry lifecycle against the observability tracer, refines
// inter-agent context through C4, and records every successful agent
// output in SessionMemory (failed invocations are not recorded there).
package scheduler

import (
	"time"

	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/graph"
	"github.com/ashfrnndz21/agentmesh/memory"
	"github.com/ashfrnndz21/agentmesh/tracer"
)

// Input bundles everything Run needs for one session.
type Input struct {
	SessionID   string
	Query       string
	Plan        core.Plan
	Assignments []core.TaskAssignment
	Agents      []core.AgentDescriptor // selected agents only
	DAG         *graph.DAG             // nodes keyed by agentID

	Invoker core.AgentInvoker
	Tracer  *tracer.Tracer
	Memory  *memory.SessionMemory
	LLM     core.ReasoningLLM
	Cfg     *core.Config
	Logger  core.Logger
}

// Result is what Run returns: one AgentExecutionRecord per dispatched agent
// plus the strategy actually used (which may differ from plan.OrchestrationStrategy
// after a parallel->hybrid downgrade).
type Result struct {
	Records       []core.AgentExecutionRecord
	FinalStrategy core.Strategy
	Success       bool
}

// agentTask is the scheduler's internal per-agent unit of work: an
// assignment joined with its agent descriptor and plan-step ordering.
type agentTask struct {
	AgentID        string
	AgentName      string
	StepID         string
	Task           string
	ExecutionOrder int
	Agent          core.AgentDescriptor
	DependsOnSteps []string // TaskAssignment.Dependencies: stepIDs, not agentIDs
}

func buildTasks(in Input) map[string]agentTask {
	agentByID := make(map[string]core.AgentDescriptor, len(in.Agents))
	for _, a := range in.Agents {
		agentByID[a.AgentID] = a
	}
	orderByStep := make(map[string]int, len(in.Plan.Steps))
	for _, s := range in.Plan.Steps {
		orderByStep[s.StepID] = s.ExecutionOrder
	}

	tasks := make(map[string]agentTask, len(in.Assignments))
	for _, a := range in.Assignments {
		tasks[a.AgentID] = agentTask{
			AgentID:        a.AgentID,
			AgentName:      a.AgentName,
			StepID:         a.StepID,
			Task:           a.Task,
			ExecutionOrder: orderByStep[a.StepID],
			Agent:          agentByID[a.AgentID],
			DependsOnSteps: a.Dependencies,
		}
	}
	return tasks
}

// stepToAgentID maps every assignment's stepID to the agentID bound to it,
// used to resolve a task's step-level Dependencies into agent-level ones.
func stepToAgentID(assignments []core.TaskAssignment) map[string]string {
	m := make(map[string]string, len(assignments))
	for _, a := range assignments {
		m[a.StepID] = a.AgentID
	}
	return m
}

// invocationOutcome pairs an agent ID with the record one invocation
// produced. The dispatch loops in scheduler.go do not use it; they
// collect AgentExecutionRecords directly.
type invocationOutcome struct {
	AgentID string
	Record  core.AgentExecutionRecord
}

const (
	maxAttempts        = 3
	initialBackoff     = 1 * time.Second
	backoffMaxDelay    = 4 * time.Second
	backoffFactor      = 2.0
	defaultMaxInFlight = 5
)
