package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// Execute runs a task under the given execution pattern and always returns
// a result; failures, including an unknown pattern, are reported through
// ExecutionResult.Error rather than a panic or error return.
func (e *Engine) Execute(ctx context.Context, task *core.Task, pattern core.ExecutionPattern) *core.ExecutionResult {
	start := time.Now()
	e.track(task)

	result := &core.ExecutionResult{TaskID: task.ID, Pattern: pattern}

	switch pattern {
	case core.PatternSequential:
		e.executeSequential(ctx, task, result)
	case core.PatternParallel:
		e.executeParallel(ctx, task, result)
	case core.PatternIterative:
		e.executeIterative(ctx, task, result)
	case core.PatternHierarchical:
		e.executeHierarchical(ctx, task, result)
	default:
		result.Error = fmt.Sprintf("Unknown execution pattern: %s", pattern)
		e.setTaskStatus(task, core.TaskFailed)
	}

	result.Duration = time.Since(start)
	if result.Success {
		e.recordDuration(result.Duration)
	}

	e.logger.Info("task execution finished",
		"task_id", task.ID, "pattern", pattern, "success", result.Success, "duration", result.Duration)

	ev := core.NewEvent(core.EventTaskComplete)
	ev.TaskID = task.ID
	ev.Result = result
	e.emitter.Emit(ev)

	return result
}

// executeSequential dispatches the task to the single most suitable agent.
func (e *Engine) executeSequential(ctx context.Context, task *core.Task, result *core.ExecutionResult) {
	agent := e.selectAgent(task)
	if agent == nil {
		result.Error = fmt.Sprintf("No suitable agent for task %s", task.ID)
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	e.setTaskStatus(task, core.TaskInProgress)

	resp, err := e.protocol.ExecuteTask(ctx, agent, task)
	if err != nil {
		result.Error = err.Error()
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	result.AgentResults = map[string]*core.AgentResponse{agent.ID: resp}
	result.Artifacts = resp.Artifacts
	if !resp.Success {
		result.Error = resp.Error
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	result.Success = true
	e.saveArtifacts(task, resp)
	e.setTaskStatus(task, core.TaskCompleted)
}

// executeParallel fans the task out to every eligible agent concurrently.
// The pattern succeeds only when every agent succeeds.
func (e *Engine) executeParallel(ctx context.Context, task *core.Task, result *core.ExecutionResult) {
	agents := e.eligibleAgents(task)
	if len(agents) == 0 {
		result.Error = fmt.Sprintf("No suitable agent for task %s", task.ID)
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	e.setTaskStatus(task, core.TaskInProgress)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]*core.AgentResponse, len(agents))
	)

	for _, agent := range agents {
		wg.Add(1)
		go func(agent *core.Agent) {
			defer wg.Done()
			resp, err := e.protocol.ExecuteTask(ctx, agent, task.Clone())
			if err != nil {
				resp = &core.AgentResponse{Success: false, Error: err.Error()}
			}
			mu.Lock()
			results[agent.ID] = resp
			mu.Unlock()
		}(agent)
	}
	wg.Wait()

	result.AgentResults = results
	success := true
	for agentID, resp := range results {
		if resp.Success {
			result.Artifacts = append(result.Artifacts, resp.Artifacts...)
			e.saveArtifacts(task, resp)
			continue
		}
		success = false
		if result.Error == "" {
			result.Error = fmt.Sprintf("agent %s failed: %s", agentID, resp.Error)
		}
	}

	result.Success = success
	if success {
		e.setTaskStatus(task, core.TaskCompleted)
		return
	}
	e.setTaskStatus(task, core.TaskFailed)
}

// executeIterative re-dispatches the task to one agent, feeding each
// failure back into the next attempt's description, until it succeeds or
// the iteration cap is reached.
func (e *Engine) executeIterative(ctx context.Context, task *core.Task, result *core.ExecutionResult) {
	agent := e.selectAgent(task)
	if agent == nil {
		result.Error = fmt.Sprintf("No suitable agent for task %s", task.ID)
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	e.setTaskStatus(task, core.TaskInProgress)

	attempt := task.Clone()
	var last *core.AgentResponse
	for i := 0; i < e.opts.MaxIterations; i++ {
		resp, err := e.protocol.ExecuteTask(ctx, agent, attempt)
		if err != nil {
			resp = &core.AgentResponse{Success: false, Error: err.Error()}
		}
		last = resp

		if resp.Success {
			result.Success = true
			result.AgentResults = map[string]*core.AgentResponse{agent.ID: resp}
			result.Artifacts = resp.Artifacts
			e.saveArtifacts(task, resp)
			e.setTaskStatus(task, core.TaskCompleted)
			return
		}

		refined := attempt.Clone()
		refined.Description = fmt.Sprintf("%s\n\nIteration %d failed: %s", task.Description, i+1, resp.Error)
		attempt = refined
	}

	result.AgentResults = map[string]*core.AgentResponse{agent.ID: last}
	result.Error = fmt.Sprintf("no success after %d iterations: %s", e.opts.MaxIterations, last.Error)
	e.setTaskStatus(task, core.TaskFailed)
}

// executeHierarchical runs agents level by level in descending priority.
// All agents within a level run concurrently; a level containing a failure
// stops descent into the levels below it.
func (e *Engine) executeHierarchical(ctx context.Context, task *core.Task, result *core.ExecutionResult) {
	agents := e.protocol.Agents()
	if len(agents) == 0 {
		result.Error = fmt.Sprintf("No suitable agent for task %s", task.ID)
		e.setTaskStatus(task, core.TaskFailed)
		return
	}

	e.setTaskStatus(task, core.TaskInProgress)
	result.AgentResults = make(map[string]*core.AgentResponse)

	// Agents() is already sorted by descending priority; split into levels.
	var levels [][]*core.Agent
	for _, agent := range agents {
		if n := len(levels); n > 0 && levels[n-1][0].Priority == agent.Priority {
			levels[n-1] = append(levels[n-1], agent)
			continue
		}
		levels = append(levels, []*core.Agent{agent})
	}

	for _, level := range levels {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		levelFailed := false

		for _, agent := range level {
			wg.Add(1)
			go func(agent *core.Agent) {
				defer wg.Done()
				resp, err := e.protocol.ExecuteTask(ctx, agent, task.Clone())
				if err != nil {
					resp = &core.AgentResponse{Success: false, Error: err.Error()}
				}
				mu.Lock()
				result.AgentResults[agent.ID] = resp
				if !resp.Success {
					levelFailed = true
					if result.Error == "" {
						result.Error = fmt.Sprintf("agent %s failed: %s", agent.ID, resp.Error)
					}
				} else {
					result.Artifacts = append(result.Artifacts, resp.Artifacts...)
				}
				mu.Unlock()
				if resp.Success {
					e.saveArtifacts(task, resp)
				}
			}(agent)
		}
		wg.Wait()

		if levelFailed {
			result.Success = false
			e.setTaskStatus(task, core.TaskFailed)
			return
		}
	}

	result.Success = true
	e.setTaskStatus(task, core.TaskCompleted)
}

// selectAgent picks the agent best suited to the task: the highest priority
// agent advertising a capability mentioned in the task text, falling back
// to the highest priority agent overall. Returns nil when no agents are
// registered.
func (e *Engine) selectAgent(task *core.Task) *core.Agent {
	agents := e.protocol.Agents()
	if len(agents) == 0 {
		return nil
	}

	text := strings.ToLower(task.Title + " " + task.Description)
	for _, agent := range agents {
		for _, cap := range agent.Capabilities {
			if cap != "" && strings.Contains(text, strings.ToLower(cap)) {
				return agent
			}
		}
	}
	return agents[0]
}

// eligibleAgents returns the agents whose capabilities match the task text,
// or every registered agent when none match specifically.
func (e *Engine) eligibleAgents(task *core.Task) []*core.Agent {
	agents := e.protocol.Agents()
	text := strings.ToLower(task.Title + " " + task.Description)

	var matched []*core.Agent
	for _, agent := range agents {
		for _, cap := range agent.Capabilities {
			if cap != "" && strings.Contains(text, strings.ToLower(cap)) {
				matched = append(matched, agent)
				break
			}
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return agents
}
