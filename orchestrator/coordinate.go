package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// CoordinateAgents executes a set of interdependent tasks in topological
// order, assigning each task to one of the given agents: a capability match
// against the task text wins, otherwise assignment round-robins through the
// agents in descending priority order. The engine status is COORDINATING
// for the duration of the run and COMPLETE afterwards. A dependency cycle
// aborts the run before any task executes; an empty agent list succeeds
// vacuously without executing anything.
func (e *Engine) CoordinateAgents(ctx context.Context, agents []*core.Agent, tasks []*core.Task) (*core.CoordinationResult, error) {
	start := time.Now()

	graph := core.NewDependencyGraph()
	byID := make(map[string]*core.Task, len(tasks))
	for _, task := range tasks {
		graph.Add(task.ID, task.Dependencies...)
		byID[task.ID] = task
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	result := &core.CoordinationResult{
		TaskResults: make(map[string]*core.AgentResponse, len(tasks)),
		Assignments: make(map[string]string, len(tasks)),
	}

	if len(agents) == 0 {
		result.Success = true
		result.Duration = time.Since(start)
		return result, nil
	}

	e.setStatus(core.StatusCoordinating)
	defer e.setStatus(core.StatusComplete)

	for _, task := range tasks {
		e.track(task)
	}

	pool := make([]*core.Agent, len(agents))
	copy(pool, agents)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Priority != pool[j].Priority {
			return pool[i].Priority > pool[j].Priority
		}
		return pool[i].ID < pool[j].ID
	})

	next := 0
	pick := func(task *core.Task) *core.Agent {
		text := strings.ToLower(task.Title + " " + task.Description)
		for _, agent := range pool {
			for _, cap := range agent.Capabilities {
				if cap != "" && strings.Contains(text, strings.ToLower(cap)) {
					return agent
				}
			}
		}
		agent := pool[next%len(pool)]
		next++
		return agent
	}

	completed := make(map[string]bool, len(tasks))
	allSucceeded := true

	for _, taskID := range order {
		task := byID[taskID]

		if !task.CanStart(completed) {
			// An upstream task failed; this one can never become ready.
			allSucceeded = false
			e.setTaskStatus(task, core.TaskBlocked)
			result.TaskResults[taskID] = &core.AgentResponse{
				Success: false,
				Error:   "blocked by failed dependency",
			}
			continue
		}

		agent := pick(task)
		result.Assignments[taskID] = agent.ID

		e.setTaskStatus(task, core.TaskInProgress)
		resp, err := e.protocol.ExecuteTask(ctx, agent, task)
		if err != nil {
			resp = &core.AgentResponse{Success: false, Error: err.Error()}
		}
		result.TaskResults[taskID] = resp

		if resp.Success {
			completed[taskID] = true
			e.saveArtifacts(task, resp)
			e.recordDuration(resp.Duration)
			e.setTaskStatus(task, core.TaskCompleted)
			continue
		}

		allSucceeded = false
		e.setTaskStatus(task, core.TaskFailed)
	}

	result.Success = allSucceeded
	result.Duration = time.Since(start)

	e.logger.Info("coordination run finished",
		"tasks", len(tasks), "success", result.Success, "duration", result.Duration)

	return result, nil
}

// ExecuteParallel runs independent tasks concurrently, bounded by the
// engine's MaxParallel option. Every task contributes exactly one batch
// item, so Succeeded+Failed always equals TotalTasks.
func (e *Engine) ExecuteParallel(ctx context.Context, tasks []*core.Task) *core.BatchResult {
	result := &core.BatchResult{
		TotalTasks: len(tasks),
		Results:    make([]core.BatchItem, len(tasks)),
	}
	if len(tasks) == 0 {
		return result
	}

	sem := make(chan struct{}, e.opts.MaxParallel)
	var wg sync.WaitGroup

	for i, task := range tasks {
		e.track(task)
		wg.Add(1)
		go func(i int, task *core.Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item := core.BatchItem{TaskID: task.ID}

			agent := e.selectAgent(task)
			if agent == nil {
				item.Status = core.BatchItemFailure
				item.Error = fmt.Sprintf("No suitable agent for task %s", task.ID)
				e.setTaskStatus(task, core.TaskFailed)
				result.Results[i] = item
				return
			}

			e.setTaskStatus(task, core.TaskInProgress)
			resp, err := e.protocol.ExecuteTask(ctx, agent, task)
			switch {
			case err != nil:
				item.Status = core.BatchItemFailure
				item.Error = err.Error()
				e.setTaskStatus(task, core.TaskFailed)
			case !resp.Success:
				item.Status = core.BatchItemFailure
				item.Error = resp.Error
				item.Response = resp
				e.setTaskStatus(task, core.TaskFailed)
			default:
				item.Status = core.BatchItemSuccess
				item.Response = resp
				e.saveArtifacts(task, resp)
				e.recordDuration(resp.Duration)
				e.setTaskStatus(task, core.TaskCompleted)
			}
			result.Results[i] = item
		}(i, task)
	}
	wg.Wait()

	for _, item := range result.Results {
		if item.Status == core.BatchItemSuccess {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result
}
