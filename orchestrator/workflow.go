package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// ExecuteWorkflowWithSignOff runs workflow steps strictly in order. A step
// whose agent cannot be resolved, whose execution fails terminally, or
// whose required sign-off is rejected halts the workflow; steps after the
// halting step are never attempted and never appear in the result.
//
// Steps with RetryOnFailure retry execution according to their agent's
// retry policy before counting as failed.
func (e *Engine) ExecuteWorkflowWithSignOff(ctx context.Context, workflow *core.Workflow) *core.WorkflowResult {
	start := time.Now()
	result := &core.WorkflowResult{WorkflowID: workflow.ID, Success: true}

	for _, step := range workflow.Steps {
		stepResult := e.executeStep(ctx, step)
		result.Steps = append(result.Steps, stepResult)

		if stepResult.Status != core.StepCompleted {
			result.Success = false
			break
		}
	}

	result.Duration = time.Since(start)
	e.logger.Info("workflow finished",
		"workflow_id", workflow.ID, "steps_run", len(result.Steps), "success", result.Success)
	return result
}

func (e *Engine) executeStep(ctx context.Context, step core.WorkflowStep) core.StepResult {
	start := time.Now()
	stepResult := core.StepResult{StepID: step.ID, Name: step.Name, AgentID: step.AgentID}

	agent, ok := e.protocol.Agent(step.AgentID)
	if !ok {
		stepResult.Status = core.StepFailed
		stepResult.Error = fmt.Sprintf("agent %q not found", step.AgentID)
		stepResult.Duration = time.Since(start)
		return stepResult
	}

	task := step.Task
	if task == nil {
		task = core.NewTask(step.Name, step.Name)
	}
	e.track(task)
	e.setTaskStatus(task, core.TaskInProgress)

	resp, err := e.runStepTask(ctx, agent, task, step.RetryOnFailure)
	stepResult.Response = resp
	stepResult.Duration = time.Since(start)

	if err != nil || !resp.Success {
		if err != nil {
			stepResult.Error = err.Error()
		} else {
			stepResult.Error = resp.Error
		}
		stepResult.Status = core.StepFailed
		e.setTaskStatus(task, core.TaskFailed)
		return stepResult
	}

	if step.RequiresSignOff {
		signOff, err := e.protocol.RequestSignOff(ctx, agent.Role, task.Title)
		if err != nil {
			stepResult.Status = core.StepFailed
			stepResult.Error = fmt.Sprintf("sign-off request failed: %v", err)
			stepResult.Duration = time.Since(start)
			e.setTaskStatus(task, core.TaskFailed)
			return stepResult
		}
		if !signOff.Approved {
			stepResult.Status = core.StepBlocked
			stepResult.Error = fmt.Sprintf("Sign-off rejected: %s", signOff.Comments)
			stepResult.Duration = time.Since(start)
			e.setTaskStatus(task, core.TaskBlocked)
			return stepResult
		}
	}

	e.saveArtifacts(task, resp)
	e.recordDuration(resp.Duration)
	e.setTaskStatus(task, core.TaskCompleted)
	stepResult.Status = core.StepCompleted
	return stepResult
}

// runStepTask executes the step's task once, or repeatedly per the agent's
// retry policy when retryOnFailure is set.
func (e *Engine) runStepTask(ctx context.Context, agent *core.Agent, task *core.Task, retryOnFailure bool) (*core.AgentResponse, error) {
	attempts := 1
	if retryOnFailure {
		attempts = agent.RetryPolicy.MaxRetries + 1
	}

	var (
		resp *core.AgentResponse
		err  error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(agent.RetryPolicy.Delay(attempt - 1)):
			}
		}

		resp, err = e.protocol.ExecuteTask(ctx, agent, task)
		if err == nil && resp.Success {
			return resp, nil
		}
		if err != nil && core.IsAgentNotFound(err) {
			return nil, err // non-retryable
		}
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
