package testutil

import (
	"time"

	"github.com/nxtg-ai/forge/core"
)

// TaskBuilder provides a fluent helper for constructing tasks in tests.
// Example:
//
//	task := NewTaskBuilder("implement").DependsOn("design").Priority(2).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type TaskBuilder struct {
	id          string
	title       string
	description string
	deps        []string
	priority    int
	status      core.TaskStatus
}

// NewTaskBuilder creates a builder for a task whose id doubles as its title
// unless overridden.
func NewTaskBuilder(id string) *TaskBuilder {
	return &TaskBuilder{id: id, title: id, status: core.TaskPending}
}

// Title overrides the task title (chainable).
func (b *TaskBuilder) Title(title string) *TaskBuilder {
	b.title = title
	return b
}

// Description sets the task description (chainable).
func (b *TaskBuilder) Description(desc string) *TaskBuilder {
	b.description = desc
	return b
}

// DependsOn appends prerequisite task ids (chainable).
func (b *TaskBuilder) DependsOn(ids ...string) *TaskBuilder {
	b.deps = append(b.deps, ids...)
	return b
}

// Priority sets the task priority (chainable).
func (b *TaskBuilder) Priority(p int) *TaskBuilder {
	b.priority = p
	return b
}

// Status overrides the initial status (chainable).
func (b *TaskBuilder) Status(s core.TaskStatus) *TaskBuilder {
	b.status = s
	return b
}

// Build returns the constructed *core.Task.
func (b *TaskBuilder) Build() *core.Task {
	return &core.Task{
		ID:           b.id,
		Title:        b.title,
		Description:  b.description,
		Status:       b.status,
		Dependencies: append([]string(nil), b.deps...),
		Priority:     b.priority,
		CreatedAt:    time.Now().UTC(),
	}
}

// AgentBuilder provides a fluent helper for constructing agents in tests.
type AgentBuilder struct {
	agent *core.Agent
}

// NewAgentBuilder creates a builder for an agent with the default retry
// policy.
func NewAgentBuilder(id, role string) *AgentBuilder {
	return &AgentBuilder{agent: core.NewAgent(id, role)}
}

// Capabilities sets the advertised capabilities (chainable).
func (b *AgentBuilder) Capabilities(caps ...string) *AgentBuilder {
	b.agent.Capabilities = caps
	return b
}

// Priority sets the agent priority (chainable).
func (b *AgentBuilder) Priority(p int) *AgentBuilder {
	b.agent.Priority = p
	return b
}

// Timeout sets the per-call timeout (chainable).
func (b *AgentBuilder) Timeout(d time.Duration) *AgentBuilder {
	b.agent.Timeout = d
	return b
}

// RetryPolicy overrides the retry policy (chainable).
func (b *AgentBuilder) RetryPolicy(p core.RetryPolicy) *AgentBuilder {
	b.agent.RetryPolicy = p
	return b
}

// Build returns the constructed *core.Agent.
func (b *AgentBuilder) Build() *core.Agent {
	return b.agent
}
