// Package orchestrator wires the nine upstream components into the single
// top-level operation the HTTP boundary exposes: plan (C5) -> match (C6) ->
// build the dependency graph (C7) -> schedule and execute (C8, driving C4,
// C3 and C9 per agent) -> synthesize (C10), all observed through C2.
package orchestrator

import (
	"context"

	"github.com/ashfrnndz21/agentmesh/catalog"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/graph"
	"github.com/ashfrnndz21/agentmesh/matcher"
	"github.com/ashfrnndz21/agentmesh/memory"
	"github.com/ashfrnndz21/agentmesh/planner"
	"github.com/ashfrnndz21/agentmesh/scheduler"
	"github.com/ashfrnndz21/agentmesh/synth"
	"github.com/ashfrnndz21/agentmesh/tracer"
	"github.com/google/uuid"
)

// Orchestrator holds every long-lived collaborator a session needs:
// the agent catalog, the shared tracer, the worker and reasoning model
// clients, and the effective configuration.
type Orchestrator struct {
	Catalog *catalog.Store
	Tracer  *tracer.Tracer
	Invoker core.AgentInvoker
	LLM     core.ReasoningLLM
	Cfg     *core.Config
	Logger  core.Logger
}

// New builds an Orchestrator from its collaborators. cfg, logger may be
// nil, in which case defaults are used.
func New(store *catalog.Store, trc *tracer.Tracer, invoker core.AgentInvoker, llm core.ReasoningLLM, cfg *core.Config, logger core.Logger) *Orchestrator {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Orchestrator{Catalog: store, Tracer: trc, Invoker: invoker, LLM: llm, Cfg: cfg, Logger: logger}
}

// Orchestrate runs one end-to-end session for query. sessionID is
// generated when blank. preferredAgents, when non-empty, restricts
// candidate selection to those agent IDs only.
func (o *Orchestrator) Orchestrate(ctx context.Context, query, sessionID string, preferredAgents []string) core.OrchestratorResponse {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	registered := o.Catalog.Snapshot()
	candidates := filterPreferred(registered, preferredAgents)

	if len(registered) == 0 {
		return o.failBeforeTrace(sessionID, query, "no agents registered", false)
	}
	if len(candidates) == 0 {
		return o.failBeforeTrace(sessionID, query, "no agents match preferredAgents", false)
	}

	catalogInfo := catalog.FormatForLLM(toSummaryViews(candidates))
	plan, err := planner.Plan(ctx, query, catalogInfo, o.LLM, o.Cfg, o.Logger)
	if err != nil {
		return o.failBeforeTrace(sessionID, query, "plan generation failed: "+err.Error(), true)
	}

	o.Tracer.StartTrace(sessionID, query, plan.OrchestrationStrategy)
	o.Tracer.LogEvent(sessionID, core.Event{
		EventType: core.EventQueryAnalysis,
		Content:   plan.Reasoning,
		Status:    string(plan.WorkflowPattern),
	})

	selected, assignments, _ := matcher.Select(plan, candidates)
	if len(selected) == 0 {
		o.Tracer.CompleteTrace(sessionID, "", false)
		return o.finishFailure(sessionID, plan, "no agent scored above the selection threshold")
	}

	o.Tracer.LogEvent(sessionID, core.Event{
		EventType: core.EventAgentSelection,
		Content:   joinAgentNames(selected),
	})

	dag := buildDAG(selected, assignments, o.Cfg, sessionID, o.Tracer)

	mem := memory.New()
	schedResult := scheduler.Run(ctx, scheduler.Input{
		SessionID:   sessionID,
		Query:       query,
		Plan:        plan,
		Assignments: assignments,
		Agents:      selected,
		DAG:         dag,
		Invoker:     o.Invoker,
		Tracer:      o.Tracer,
		Memory:      mem,
		LLM:         o.LLM,
		Cfg:         o.Cfg,
		Logger:      o.Logger,
	})

	cleaned := mem.AllCleaned()
	reflections := buildReflections(mem)

	response := synth.Synthesize(ctx, synth.Input{
		Plan:        plan,
		AgentNames:  mem.AgentNames(),
		Cleaned:     cleaned,
		Reflections: reflections,
	}, o.LLM, core.CompletionOptions{Model: o.Cfg.OrchestratorModel, Timeout: o.Cfg.SynthesisTimeout}, o.Logger)

	partial := !schedResult.Success
	if partial && !o.Cfg.SynthesizeOnPartial && len(cleaned) == 0 {
		o.Tracer.CompleteTrace(sessionID, "", false)
		return o.finishFailure(sessionID, plan, "session cancelled before any agent completed")
	}

	o.Tracer.CompleteTrace(sessionID, response, schedResult.Success)
	trace, _ := o.Tracer.GetTrace(sessionID)

	return core.OrchestratorResponse{
		Success:          schedResult.Success,
		SessionID:        sessionID,
		Response:         response,
		Plan:             plan,
		SelectedAgents:   agentNames(selected),
		ExecutionDetails: schedResult.Records,
		Trace:            trace,
		Partial:          partial,
	}
}

// failBeforeTrace builds an error response for failures that happen before
// a trace exists to record them in (no agents, plan generation failure).
// When startTrace is true the caller still wants orchestration_start/
// error_occurred logged, since planning itself ran inside a session.
func (o *Orchestrator) failBeforeTrace(sessionID, query, msg string, startTrace bool) core.OrchestratorResponse {
	if startTrace {
		o.Tracer.StartTrace(sessionID, query, "")
	}
	o.Tracer.LogEvent(sessionID, core.Event{
		EventType: core.EventErrorOccurred,
		Content:   msg,
		Status:    "failed",
	})
	o.Tracer.CompleteTrace(sessionID, "", false)
	trace, _ := o.Tracer.GetTrace(sessionID)
	return core.OrchestratorResponse{
		Success:   false,
		SessionID: sessionID,
		Error:     msg,
		Trace:     trace,
	}
}

func (o *Orchestrator) finishFailure(sessionID string, plan core.Plan, msg string) core.OrchestratorResponse {
	trace, _ := o.Tracer.GetTrace(sessionID)
	return core.OrchestratorResponse{
		Success:   false,
		SessionID: sessionID,
		Plan:      plan,
		Error:     msg,
		Trace:     trace,
	}
}

func filterPreferred(agents []core.AgentDescriptor, preferred []string) []core.AgentDescriptor {
	if len(preferred) == 0 {
		return agents
	}
	allowed := make(map[string]bool, len(preferred))
	for _, id := range preferred {
		allowed[id] = true
	}
	var out []core.AgentDescriptor
	for _, a := range agents {
		if allowed[a.AgentID] {
			out = append(out, a)
		}
	}
	return out
}

func toSummaryViews(agents []core.AgentDescriptor) []catalog.AgentSummaryView {
	out := make([]catalog.AgentSummaryView, 0, len(agents))
	for _, a := range agents {
		out = append(out, catalog.AgentSummaryView{
			AgentID:        a.AgentID,
			Name:           a.Name,
			Domain:         a.Domain,
			Specialization: a.Specialization,
			Capabilities:   a.Capabilities,
			Keywords:       a.Keywords,
		})
	}
	return out
}

func agentNames(agents []core.AgentDescriptor) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.Name)
	}
	return out
}

func joinAgentNames(agents []core.AgentDescriptor) string {
	names := agentNames(agents)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// buildDAG derives the graph.BuildInput from the selection/assignments and
// runs the cycle-aware builder, forwarding every repair event it returns to
// the tracer.
func buildDAG(selected []core.AgentDescriptor, assignments []core.TaskAssignment, cfg *core.Config, sessionID string, trc *tracer.Tracer) *graph.DAG {
	agentIDs := make([]string, 0, len(selected))
	agentCaps := make(map[string][]string, len(selected))
	for _, a := range selected {
		agentIDs = append(agentIDs, a.AgentID)
		agentCaps[a.AgentID] = a.Capabilities
	}

	stepAgent := make(map[string]string, len(assignments))
	stepDeps := make(map[string][]string, len(assignments))
	agentScores := make(map[string]float64, len(assignments))
	for _, a := range assignments {
		stepAgent[a.StepID] = a.AgentID
		stepDeps[a.StepID] = a.Dependencies
		agentScores[a.AgentID] = a.RelevanceScore
	}

	dag, events := graph.Build(graph.BuildInput{
		SelectedAgentIDs:        agentIDs,
		AgentCapabilities:       agentCaps,
		CapabilityDependencies:  cfg.CapabilityDependencies,
		StepAgent:               stepAgent,
		StepDependencies:        stepDeps,
		AgentScores:             agentScores,
	})
	for _, e := range events {
		trc.LogEvent(sessionID, e)
	}
	return dag
}

// buildReflections projects SessionMemory's quality analysis into the
// ReflectionNote shape synth.Synthesize expects.
func buildReflections(mem *memory.SessionMemory) []synth.ReflectionNote {
	var notes []synth.ReflectionNote
	for _, a := range mem.Reflect() {
		if len(a.Recommendations) == 0 {
			continue
		}
		notes = append(notes, synth.ReflectionNote{AgentName: a.AgentName, Recommendations: a.Recommendations})
	}
	return notes
}
