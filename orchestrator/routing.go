package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// roleKeywords routes task text to the agent role best suited for it. The
// first matching keyword wins, checked in declaration order.
var roleKeywords = []struct {
	role     string
	keywords []string
}{
	{"architect", []string{"design", "architecture", "schema", "adr"}},
	{"qa", []string{"test", "verify", "validate", "qa", "review"}},
	{"platform", []string{"deploy", "infra", "pipeline", "provision", "docker"}},
	{"integration", []string{"integrate", "connect", "webhook", "sync"}},
	{"cli", []string{"cli", "command", "terminal", "flag"}},
	{"backend", []string{"implement", "build", "code", "api", "endpoint", "service"}},
}

// RecommendAgent returns the role recommended for a task description, or
// "backend" when no routing keyword matches.
func (e *Engine) RecommendAgent(description string) string {
	text := strings.ToLower(description)
	for _, entry := range roleKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.role
			}
		}
	}
	return "backend"
}

// AssignAgent resolves the registered agent whose role matches the task's
// routing keywords, falling back to capability based selection. The
// interaction log records every assignment.
func (e *Engine) AssignAgent(task *core.Task) (*core.Agent, error) {
	role := e.RecommendAgent(task.Title + " " + task.Description)

	var chosen *core.Agent
	for _, agent := range e.protocol.Agents() {
		if strings.EqualFold(agent.Role, role) {
			chosen = agent
			break
		}
	}
	if chosen == nil {
		chosen = e.selectAgent(task)
	}
	if chosen == nil {
		return nil, fmt.Errorf("No suitable agent for task %s", task.ID)
	}

	e.logInteraction(chosen.ID, task.ID, "assigned", fmt.Sprintf("routed as %s work", role))
	return chosen, nil
}

// DecomposeTask splits a task into a design, implementation and testing
// chain where each subtask depends on the previous one. The original task
// id prefixes the subtask ids so related work stays greppable.
func (e *Engine) DecomposeTask(task *core.Task) []*core.Task {
	design := core.NewTask("Design: "+task.Title, "Produce the design for: "+task.Description)
	design.ID = task.ID + "-design"
	design.Priority = task.Priority

	implement := core.NewTask("Implement: "+task.Title, "Implement the design for: "+task.Description)
	implement.ID = task.ID + "-implement"
	implement.Priority = task.Priority
	implement.Dependencies = []string{design.ID}

	test := core.NewTask("Test: "+task.Title, "Verify the implementation of: "+task.Description)
	test.ID = task.ID + "-test"
	test.Priority = task.Priority
	test.Dependencies = []string{implement.ID}

	e.logInteraction("", task.ID, "decomposed", "split into design, implement and test subtasks")
	return []*core.Task{design, implement, test}
}

// Interaction is one entry in the engine's coordination audit log.
type Interaction struct {
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agent_id,omitempty"`
	TaskID    string    `json:"task_id,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

func (e *Engine) logInteraction(agentID, taskID, action, detail string) {
	e.interactionMu.Lock()
	e.interactions = append(e.interactions, Interaction{
		Timestamp: time.Now().UTC(),
		AgentID:   agentID,
		TaskID:    taskID,
		Action:    action,
		Detail:    detail,
	})
	e.interactionMu.Unlock()
}

// Interactions returns the audit log in chronological order.
func (e *Engine) Interactions() []Interaction {
	e.interactionMu.Lock()
	defer e.interactionMu.Unlock()
	return append([]Interaction(nil), e.interactions...)
}
