package core

import "time"

// Workflow is an ordered series of gated steps executed by the
// orchestration engine.
type Workflow struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Steps        []WorkflowStep `json:"steps"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// WorkflowStep binds one task to one agent, optionally gated by a sign-off.
// RetryOnFailure defaults to false: an absent value means the workflow stops
// on the step's first failure.
type WorkflowStep struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AgentID         string `json:"agent_id"`
	Task            *Task  `json:"task"`
	RequiresSignOff bool   `json:"requires_sign_off"`
	RetryOnFailure  bool   `json:"retry_on_failure"`
}

// StepStatus labels the terminal state of an executed workflow step.
type StepStatus string

const (
	// StepCompleted marks a step that executed (and was signed off, if
	// required) successfully.
	StepCompleted StepStatus = "COMPLETED"
	// StepFailed marks a step whose execution failed or whose agent could
	// not be resolved.
	StepFailed StepStatus = "FAILED"
	// StepBlocked marks a step halted by a rejected sign-off.
	StepBlocked StepStatus = "BLOCKED"
)

// StepResult records the outcome of one attempted workflow step.
type StepResult struct {
	StepID   string         `json:"step_id"`
	Name     string         `json:"name"`
	AgentID  string         `json:"agent_id"`
	Status   StepStatus     `json:"status"`
	Error    string         `json:"error,omitempty"`
	Duration time.Duration  `json:"duration"`
	Response *AgentResponse `json:"response,omitempty"`
}

// WorkflowResult holds the executed-step records of a workflow run. Steps
// after a stopping condition are never appended.
type WorkflowResult struct {
	WorkflowID string        `json:"workflow_id"`
	Success    bool          `json:"success"`
	Duration   time.Duration `json:"duration"`
	Steps      []StepResult  `json:"steps"`
}
