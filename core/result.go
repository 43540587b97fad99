package core

import "time"

// ExecutionPattern selects the dispatch strategy for a task.
type ExecutionPattern string

const (
	// PatternSequential dispatches the task to a single suitable agent.
	PatternSequential ExecutionPattern = "SEQUENTIAL"
	// PatternParallel fans the task out to every eligible agent concurrently.
	PatternParallel ExecutionPattern = "PARALLEL"
	// PatternIterative re-dispatches the task with refined input until it
	// succeeds or the iteration cap is reached.
	PatternIterative ExecutionPattern = "ITERATIVE"
	// PatternHierarchical executes agents level by level in priority order;
	// a failing level stops descent into the levels below it.
	PatternHierarchical ExecutionPattern = "HIERARCHICAL"
)

// AgentResponse is produced by one agent handler for one task.
type AgentResponse struct {
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Result    any           `json:"result,omitempty"`
	Artifacts []string      `json:"artifacts,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// ExecutionResult is the immutable outcome of one Execute call.
// AgentResults carries the per-agent breakdown for patterns that dispatch
// to more than one agent.
type ExecutionResult struct {
	TaskID       string                    `json:"task_id"`
	Pattern      ExecutionPattern          `json:"pattern"`
	Success      bool                      `json:"success"`
	Duration     time.Duration             `json:"duration"`
	Error        string                    `json:"error,omitempty"`
	AgentResults map[string]*AgentResponse `json:"agent_results,omitempty"`
	Artifacts    []string                  `json:"artifacts,omitempty"`
}

// Assignment acknowledges the direct assignment of a task to an agent.
type Assignment struct {
	TaskID  string `json:"task_id"`
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
}

// CoordinationResult aggregates a dependency-graph coordination run.
// TaskResults is keyed by task id, Assignments maps task id to the agent
// that executed it.
type CoordinationResult struct {
	Success     bool                      `json:"success"`
	Duration    time.Duration             `json:"duration"`
	TaskResults map[string]*AgentResponse `json:"task_results"`
	Assignments map[string]string         `json:"assignments"`
}

// BatchItemStatus labels the outcome of one task in a parallel batch.
type BatchItemStatus string

const (
	// BatchItemSuccess marks a batch task that completed successfully.
	BatchItemSuccess BatchItemStatus = "success"
	// BatchItemFailure marks a batch task that failed; Error is populated.
	BatchItemFailure BatchItemStatus = "failure"
)

// BatchItem records the outcome of one task within a parallel batch.
type BatchItem struct {
	TaskID   string          `json:"task_id"`
	Status   BatchItemStatus `json:"status"`
	Error    string          `json:"error,omitempty"`
	Response *AgentResponse  `json:"response,omitempty"`
}

// BatchResult summarizes an independent parallel batch. The invariant
// Succeeded + Failed == TotalTasks always holds.
type BatchResult struct {
	TotalTasks int         `json:"total_tasks"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Results    []BatchItem `json:"results"`
}

// SignOff is the resolution of a sign-off request against the approval
// service. Comments carry approver feedback, rejection reasons or a timeout
// indicator.
type SignOff struct {
	Approved bool   `json:"approved"`
	Comments string `json:"comments,omitempty"`
}
