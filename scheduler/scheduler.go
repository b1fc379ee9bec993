package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/ashfrnndz21/agentmesh/core"
)

// Run dispatches a matched, graph-built plan: it determines the strategy
// per §4.4, executes every selected agent through invokeAgent, and returns
// one AgentExecutionRecord per agent plus the strategy actually used.
func Run(ctx context.Context, in Input) Result {
	tasks := buildTasks(in)
	stepAgent := stepToAgentID(in.Assignments)

	dagHasEdges := in.DAG != nil && in.DAG.HasEdges()
	strategy := determineStrategy(in.Plan, dagHasEdges, len(in.Agents))

	var records []core.AgentExecutionRecord
	switch strategy {
	case core.StrategySingle:
		records = runSingle(ctx, in, tasks)
	case core.StrategyParallel:
		strategy, records = runParallelOrDowngrade(ctx, in, tasks, stepAgent)
	case core.StrategyHybrid:
		records = runHybrid(ctx, in, tasks, stepAgent)
	default:
		records = runSequential(ctx, in, tasks, stepAgent)
	}

	success := len(records) > 0
	for _, r := range records {
		if r.Status != core.StatusCompleted {
			success = false
			break
		}
	}

	return Result{Records: records, FinalStrategy: strategy, Success: success}
}

func runSingle(ctx context.Context, in Input, tasks map[string]agentTask) []core.AgentExecutionRecord {
	if len(in.Assignments) == 0 {
		return nil
	}
	task, ok := tasks[in.Assignments[0].AgentID]
	if !ok {
		return nil
	}
	return []core.AgentExecutionRecord{invokeAgent(ctx, in, task, true, nil)}
}

// allTasks snapshots a map into a slice. The slice follows map iteration
// order, which is not deterministic; callers that need an order sort it.
func allTasks(tasks map[string]agentTask) []agentTask {
	out := make([]agentTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t)
	}
	return out
}

func depsFor(task agentTask, stepAgent map[string]string, tasks map[string]agentTask, records map[string]core.AgentExecutionRecord) []depInfo {
	var out []depInfo
	for _, depStepID := range task.DependsOnSteps {
		depAgentID, ok := stepAgent[depStepID]
		if !ok {
			continue
		}
		depTask, ok := tasks[depAgentID]
		if !ok {
			continue
		}
		rec, done := records[depAgentID]
		out = append(out, depInfo{Agent: depTask.Agent, Success: done && rec.Status == core.StatusCompleted})
	}
	return out
}

// readyTasks returns the not-yet-executed tasks whose step dependencies
// have all executed (successfully or not - a failed dependency still
// unblocks its dependents, per §4.4.6's deadlock-avoidance rule).
func readyTasks(all []agentTask, executed map[string]bool, stepAgent map[string]string) []agentTask {
	var ready []agentTask
	for _, t := range all {
		if executed[t.AgentID] {
			continue
		}
		ok := true
		for _, depStep := range t.DependsOnSteps {
			depAgentID, known := stepAgent[depStep]
			if !known {
				continue
			}
			if !executed[depAgentID] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, t)
		}
	}
	return ready
}

func sortByOrderThenName(ts []agentTask) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].ExecutionOrder != ts[j].ExecutionOrder {
			return ts[i].ExecutionOrder < ts[j].ExecutionOrder
		}
		return ts[i].AgentName < ts[j].AgentName
	})
}

// abortRemaining marks every not-yet-executed task as failed due to an
// unresolvable dependency cycle, emitting one error_occurred event each.
func abortRemaining(in Input, all []agentTask, executed map[string]bool) []core.AgentExecutionRecord {
	var out []core.AgentExecutionRecord
	for _, t := range all {
		if executed[t.AgentID] {
			continue
		}
		in.Tracer.LogEvent(in.SessionID, core.Event{
			EventType: core.EventErrorOccurred,
			AgentID:   t.AgentID,
			Content:   "dependency_cycle: aborted, dependencies never became ready",
			Status:    "aborted",
		})
		out = append(out, core.AgentExecutionRecord{
			AgentID:   t.AgentID,
			AgentName: t.AgentName,
			Status:    core.StatusFailed,
			Error:     "aborted due to dependency cycle",
		})
		executed[t.AgentID] = true
	}
	return out
}

// runSequential processes ready agents one at a time, dependency-ordered,
// ties broken by ascending executionOrder then name.
func runSequential(ctx context.Context, in Input, tasks map[string]agentTask, stepAgent map[string]string) []core.AgentExecutionRecord {
	all := allTasks(tasks)
	executed := make(map[string]bool, len(all))
	records := make(map[string]core.AgentExecutionRecord, len(all))
	var ordered []core.AgentExecutionRecord

	for len(executed) < len(all) {
		ready := readyTasks(all, executed, stepAgent)
		if len(ready) == 0 {
			ordered = append(ordered, abortRemaining(in, all, executed)...)
			break
		}
		sortByOrderThenName(ready)
		task := ready[0]

		deps := depsFor(task, stepAgent, tasks, records)
		isFirst := len(task.DependsOnSteps) == 0
		rec := invokeAgent(ctx, in, task, isFirst, deps)

		records[task.AgentID] = rec
		executed[task.AgentID] = true
		ordered = append(ordered, rec)
	}
	return ordered
}

func maxConcurrencyOf(cfg *core.Config) int {
	if cfg == nil || cfg.MaxConcurrency <= 0 {
		return defaultMaxInFlight
	}
	return cfg.MaxConcurrency
}

// runParallelOrDowngrade enforces the §4.4 parallel-dispatch DAG check:
// parallel mode requires an edge-free DAG; if the DAG has edges it
// downgrades to hybrid and emits a warning event.
func runParallelOrDowngrade(ctx context.Context, in Input, tasks map[string]agentTask, stepAgent map[string]string) (core.Strategy, []core.AgentExecutionRecord) {
	if in.DAG != nil && in.DAG.HasEdges() {
		in.Tracer.LogEvent(in.SessionID, core.Event{
			EventType: core.EventErrorOccurred,
			Content:   "parallel strategy downgraded to hybrid: dependency graph has edges",
			Status:    "downgraded",
		})
		return core.StrategyHybrid, runHybrid(ctx, in, tasks, stepAgent)
	}
	return core.StrategyParallel, runParallel(ctx, in, tasks)
}

func runParallel(ctx context.Context, in Input, tasks map[string]agentTask) []core.AgentExecutionRecord {
	sem := make(chan struct{}, maxConcurrencyOf(in.Cfg))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var records []core.AgentExecutionRecord

	for _, t := range allTasks(tasks) {
		wg.Add(1)
		go func(task agentTask) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec := invokeAgent(ctx, in, task, true, nil)

			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
		}(t)
	}
	wg.Wait()
	return records
}

// runHybrid dispatches ready-frontier waves: every task whose dependencies
// are all resolved runs concurrently (bounded by maxConcurrency), the
// scheduler waits for the whole wave, then recomputes the next frontier.
func runHybrid(ctx context.Context, in Input, tasks map[string]agentTask, stepAgent map[string]string) []core.AgentExecutionRecord {
	maxConcurrency := maxConcurrencyOf(in.Cfg)
	all := allTasks(tasks)
	executed := make(map[string]bool, len(all))
	records := make(map[string]core.AgentExecutionRecord, len(all))
	var ordered []core.AgentExecutionRecord

	for len(executed) < len(all) {
		wave := readyTasks(all, executed, stepAgent)
		if len(wave) == 0 {
			ordered = append(ordered, abortRemaining(in, all, executed)...)
			break
		}

		sem := make(chan struct{}, maxConcurrency)
		var wg sync.WaitGroup
		var mu sync.Mutex
		waveResults := make(map[string]core.AgentExecutionRecord, len(wave))

		for _, t := range wave {
			wg.Add(1)
			go func(task agentTask) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				deps := depsFor(task, stepAgent, tasks, records)
				isFirst := len(task.DependsOnSteps) == 0
				rec := invokeAgent(ctx, in, task, isFirst, deps)

				mu.Lock()
				waveResults[task.AgentID] = rec
				mu.Unlock()
			}(t)
		}
		wg.Wait()

		waveTasks := make([]agentTask, len(wave))
		copy(waveTasks, wave)
		sortByOrderThenName(waveTasks)
		for _, t := range waveTasks {
			rec := waveResults[t.AgentID]
			records[t.AgentID] = rec
			executed[t.AgentID] = true
			ordered = append(ordered, rec)
		}
	}
	return ordered
}
