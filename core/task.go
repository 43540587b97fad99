package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus tracks the lifecycle of a task. Status is mutated only by the
// orchestration engine in response to execution outcomes.
type TaskStatus string

const (
	// TaskPending marks a task that has been created but not dispatched.
	TaskPending TaskStatus = "PENDING"
	// TaskInProgress marks a task currently executing on an agent.
	TaskInProgress TaskStatus = "IN_PROGRESS"
	// TaskBlocked marks a task halted by an unsatisfied gate (e.g. sign-off).
	TaskBlocked TaskStatus = "BLOCKED"
	// TaskCompleted marks a task that finished successfully.
	TaskCompleted TaskStatus = "COMPLETED"
	// TaskFailed marks a task whose execution failed terminally.
	TaskFailed TaskStatus = "FAILED"
)

// Task is a unit of work with dependencies and a lifecycle status.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `json:"status"`
	Dependencies []string   `json:"dependencies,omitempty"`
	Priority     int        `json:"priority"`
	CreatedAt    time.Time  `json:"created_at"`
	Artifacts    []string   `json:"artifacts,omitempty"`
}

// NewTask creates a pending task with a generated id.
func NewTask(title, description string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// CanStart reports whether every dependency of the task appears in the
// completed set.
func (t *Task) CanStart(completed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if !completed[dep] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the task so callers can hand it to concurrent
// dispatch paths without sharing mutable state.
func (t *Task) Clone() *Task {
	cp := *t
	cp.Dependencies = append([]string(nil), t.Dependencies...)
	cp.Artifacts = append([]string(nil), t.Artifacts...)
	return &cp
}

// DependencyGraph maps task ids to their prerequisite task ids. Insertion
// order is preserved so topological ordering is deterministic.
type DependencyGraph struct {
	deps  map[string][]string
	order []string
}

// NewDependencyGraph constructs an empty graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{deps: make(map[string][]string)}
}

// Add registers a task and the tasks that must execute before it. Adding the
// same task twice replaces its prerequisite list.
func (g *DependencyGraph) Add(taskID string, prereqs ...string) {
	if _, exists := g.deps[taskID]; !exists {
		g.order = append(g.order, taskID)
	}
	g.deps[taskID] = append([]string(nil), prereqs...)
}

// Dependencies returns the prerequisite ids recorded for a task.
func (g *DependencyGraph) Dependencies(taskID string) []string {
	return append([]string(nil), g.deps[taskID]...)
}

// TaskIDs returns all task ids in insertion order.
func (g *DependencyGraph) TaskIDs() []string {
	return append([]string(nil), g.order...)
}

// Len returns the number of tasks in the graph.
func (g *DependencyGraph) Len() int { return len(g.order) }

// TopologicalOrder returns the task ids sorted so that every task appears
// after all of its prerequisites (Kahn's algorithm, stable with respect to
// insertion order). Prerequisites that were never added as tasks themselves
// are ignored for ordering purposes. A cycle yields a CyclicDependencyError
// naming the tasks involved.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string, len(g.order))

	for _, id := range g.order {
		indegree[id] = 0
	}
	for _, id := range g.order {
		for _, pre := range g.deps[id] {
			if _, known := indegree[pre]; !known {
				continue // external prerequisite, nothing to order
			}
			indegree[id]++
			dependents[pre] = append(dependents[pre], id)
		}
	}

	var ready []string
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(sorted) != len(g.order) {
		var cyclic []string
		for _, id := range g.order {
			if indegree[id] > 0 {
				cyclic = append(cyclic, id)
			}
		}
		return nil, &CyclicDependencyError{TaskIDs: cyclic}
	}

	return sorted, nil
}
