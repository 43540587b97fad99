package core

import "time"

// Phase describes the engine-wide activity derived from tracked task
// statuses.
type Phase string

const (
	// PhaseIdle means no tasks are tracked.
	PhaseIdle Phase = "idle"
	// PhasePlanning means tasks exist but none has started executing.
	PhasePlanning Phase = "planning"
	// PhaseExecuting means at least one task is in progress.
	PhaseExecuting Phase = "executing"
	// PhaseActive means tasks are blocked or partially done without any
	// currently executing.
	PhaseActive Phase = "active"
	// PhaseCompleted means every tracked task has completed.
	PhaseCompleted Phase = "completed"
)

// ProgressState is a point-in-time snapshot of aggregate task progress.
// EstimatedCompletion is present only while at least one task is in
// progress.
type ProgressState struct {
	TotalTasks          int        `json:"total_tasks"`
	CompletedTasks      int        `json:"completed_tasks"`
	InProgressTasks     int        `json:"in_progress_tasks"`
	FailedTasks         int        `json:"failed_tasks"`
	BlockedTasks        int        `json:"blocked_tasks"`
	OverallProgress     int        `json:"overall_progress"` // 0..100
	CurrentPhase        Phase      `json:"current_phase"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}

// CoordinationStatus is the engine-wide lifecycle state.
type CoordinationStatus string

const (
	// StatusIdle is the rest state.
	StatusIdle CoordinationStatus = "IDLE"
	// StatusCoordinating is set for the duration of a multi-agent
	// coordination run.
	StatusCoordinating CoordinationStatus = "COORDINATING"
	// StatusComplete is set when a coordination run finishes.
	StatusComplete CoordinationStatus = "COMPLETE"
	// StatusError is set only on an unrecoverable internal failure.
	StatusError CoordinationStatus = "ERROR"
)
