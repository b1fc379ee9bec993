package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ashfrnndz21/agentmesh/clean"
	"github.com/ashfrnndz21/agentmesh/core"
	"github.com/ashfrnndz21/agentmesh/refine"
	"github.com/ashfrnndz21/agentmesh/resilience"
)

// depInfo is one dependency of a task, resolved to its agent descriptor and
// whether its own invocation succeeded.
type depInfo struct {
	Agent   core.AgentDescriptor
	Success bool
}

var invokeRetryConfig = &resilience.RetryConfig{
	MaxAttempts:   maxAttempts,
	InitialDelay:  initialBackoff,
	MaxDelay:      backoffMaxDelay,
	BackoffFactor: backoffFactor,
	JitterEnabled: false,
}

// invokeAgent runs the full §4.4 per-invocation lifecycle for one agent:
// handoff-start, context refinement via C4 and a context_transfer event,
// execution-start, the retried worker call, and the terminal
// complete/fail events. It always returns a record, never an error -
// failures are captured in the record's Status/Error fields so the caller
// can keep scheduling downstream work.
func invokeAgent(ctx context.Context, in Input, task agentTask, isFirstStep bool, deps []depInfo) core.AgentExecutionRecord {
	startTime := time.Now()

	fromAgentID := ""
	if len(deps) > 0 {
		fromAgentID = deps[0].Agent.AgentID
	}
	handoffID := in.Tracer.StartHandoff(in.SessionID, fromAgentID, task.AgentID)

	var contextDeps []depOutput
	for _, d := range deps {
		if !d.Success {
			contextDeps = append(contextDeps, depOutput{AgentName: d.Agent.Name, Failed: true})
			continue
		}
		cleanedText, ok := in.Memory.Cleaned(d.Agent.Name)
		if !ok || strings.TrimSpace(cleanedText) == "" {
			continue
		}
		refined, snapshot := refine.Refine(ctx, cleanedText, "agent_handoff", d.Agent, task.Agent, in.LLM, core.CompletionOptions{
			Model:   in.Cfg.OrchestratorModel,
			Timeout: in.Cfg.RefinementTimeout,
		})
		in.Tracer.LogContextTransfer(in.SessionID, snapshot)
		contextDeps = append(contextDeps, depOutput{AgentName: d.Agent.Name, Text: refined})
	}

	inputPrepared := prepareInput(task, in.Query, isFirstStep, contextDeps)

	in.Tracer.LogEvent(in.SessionID, core.Event{
		EventType: core.EventContextTransfer,
		AgentID:   task.AgentID,
		Content:   truncate(inputPrepared, dependencyOutputTruncateLen),
	})
	in.Tracer.LogEvent(in.SessionID, core.Event{
		EventType: core.EventAgentExecutionStart,
		AgentID:   task.AgentID,
	})

	timeout := in.Cfg.AgentExecutionTimeout
	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rawOutput string
	var toolsUsed []string
	invokeErr := resilience.Retry(invokeCtx, invokeRetryConfig, func() error {
		out, tools, err := in.Invoker.Invoke(invokeCtx, task.AgentID, inputPrepared)
		if err != nil {
			return err
		}
		rawOutput, toolsUsed = out, tools
		return nil
	})

	endTime := time.Now()
	record := core.AgentExecutionRecord{
		AgentID:       task.AgentID,
		AgentName:     task.AgentName,
		StartTime:     startTime,
		EndTime:       endTime,
		ExecutionTime: endTime.Sub(startTime),
		ToolsUsed:     toolsUsed,
	}

	if invokeErr != nil {
		status := core.StatusFailed
		if errors.Is(invokeCtx.Err(), context.DeadlineExceeded) {
			status = core.StatusTimeout
		}
		record.Status = status
		record.Error = invokeErr.Error()

		in.Tracer.CompleteHandoff(in.SessionID, handoffID, "", invokeErr)
		in.Tracer.LogEvent(in.SessionID, core.Event{
			EventType: core.EventErrorOccurred,
			AgentID:   task.AgentID,
			Content:   invokeErr.Error(),
			Status:    string(status),
		})
		if in.Logger != nil {
			in.Logger.Warn("agent invocation failed", map[string]interface{}{
				"agent_id": task.AgentID,
				"status":   string(status),
				"error":    invokeErr.Error(),
			})
		}
		return record
	}

	cleanedOutput := clean.Clean(rawOutput)
	in.Memory.Record(task.AgentName, rawOutput)

	record.RawOutput = rawOutput
	record.CleanedOutput = cleanedOutput
	record.Status = core.StatusCompleted
	if qa, ok := in.Memory.Analysis(task.AgentName); ok {
		record.QualityScore = qa.CompletenessRatio
	}

	in.Tracer.LogEvent(in.SessionID, core.Event{
		EventType:     core.EventAgentExecutionComplete,
		AgentID:       task.AgentID,
		ExecutionTime: record.ExecutionTime,
	})
	in.Tracer.CompleteHandoff(in.SessionID, handoffID, cleanedOutput, nil)

	return record
}
