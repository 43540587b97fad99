package orchestrator

import (
	"math"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// GetProgress returns a snapshot of aggregate progress across all tracked
// tasks. The estimated completion time is derived from the mean duration of
// completed tasks and is only present while work is in progress.
func (e *Engine) GetProgress() *core.ProgressState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	state := &core.ProgressState{TotalTasks: len(e.taskOrder)}

	for _, id := range e.taskOrder {
		switch e.tasks[id].Status {
		case core.TaskCompleted:
			state.CompletedTasks++
		case core.TaskInProgress:
			state.InProgressTasks++
		case core.TaskFailed:
			state.FailedTasks++
		case core.TaskBlocked:
			state.BlockedTasks++
		}
	}

	if state.TotalTasks > 0 {
		state.OverallProgress = int(math.Round(float64(state.CompletedTasks) / float64(state.TotalTasks) * 100))
	}

	switch {
	case state.TotalTasks == 0:
		state.CurrentPhase = core.PhaseIdle
	case state.CompletedTasks == state.TotalTasks:
		state.CurrentPhase = core.PhaseCompleted
	case state.InProgressTasks > 0:
		state.CurrentPhase = core.PhaseExecuting
	case state.BlockedTasks > 0 || state.CompletedTasks > 0 || state.FailedTasks > 0:
		state.CurrentPhase = core.PhaseActive
	default:
		state.CurrentPhase = core.PhasePlanning
	}

	if state.InProgressTasks > 0 && len(e.durations) > 0 {
		var sum time.Duration
		for _, d := range e.durations {
			sum += d
		}
		mean := sum / time.Duration(len(e.durations))
		remaining := state.TotalTasks - state.CompletedTasks - state.FailedTasks
		eta := time.Now().Add(mean * time.Duration(remaining))
		state.EstimatedCompletion = &eta
	}

	return state
}
