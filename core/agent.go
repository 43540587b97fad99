package core

import (
	"context"
	"math"
	"time"
)

// RetryPolicy controls how often and how quickly a failed message delivery
// is retried for a given agent. Delays grow exponentially:
// RetryDelay × BackoffMultiplier^attempt.
type RetryPolicy struct {
	// MaxRetries is the number of re-deliveries after the initial attempt.
	// A permanently failing handler is therefore invoked MaxRetries+1 times.
	MaxRetries int `json:"max_retries"`

	// RetryDelay is the base delay before the first retry.
	RetryDelay time.Duration `json:"retry_delay"`

	// BackoffMultiplier scales the delay for each subsequent retry.
	// Values below 1 are treated as 1 (constant delay).
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// DefaultRetryPolicy returns the policy applied to agents that do not
// configure their own: three retries starting at 100ms, doubling each time.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		RetryDelay:        100 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

// Delay returns the backoff delay preceding the given retry attempt.
// Attempt counting is zero-based: attempt 0 is the first retry.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.RetryDelay <= 0 {
		return 0
	}
	mult := p.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	return time.Duration(float64(p.RetryDelay) * math.Pow(mult, float64(attempt)))
}

// Agent describes a registered worker capable of executing tasks. Aside from
// runtime status tracked elsewhere, an Agent is immutable once registered.
type Agent struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Role               string        `json:"role"`
	Capabilities       []string      `json:"capabilities,omitempty"`
	Priority           int           `json:"priority"`
	MaxConcurrentTasks int           `json:"max_concurrent_tasks"`
	Timeout            time.Duration `json:"timeout"`
	RetryPolicy        RetryPolicy   `json:"retry_policy"`
}

// NewAgent constructs an agent with the default retry policy. The role
// doubles as the display name when no separate name is supplied.
func NewAgent(id, role string, capabilities ...string) *Agent {
	return &Agent{
		ID:                 id,
		Name:               role,
		Role:               role,
		Capabilities:       capabilities,
		MaxConcurrentTasks: 1,
		RetryPolicy:        DefaultRetryPolicy(),
	}
}

// HasCapability reports whether the agent advertises the given capability.
func (a *Agent) HasCapability(capability string) bool {
	for _, c := range a.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Handler is implemented by agent workers. HandleTask executes a unit of
// work and reports its outcome; HandleMessage consumes a delivered queue
// message. Both must be idempotent: the protocol guarantees at-least-once
// delivery, not exactly-once.
type Handler interface {
	HandleTask(ctx context.Context, task *Task) (*AgentResponse, error)
	HandleMessage(ctx context.Context, msg Message) error
}

// HandlerFuncs adapts plain functions to the Handler interface. Nil fields
// fall back to benign defaults: a nil TaskFunc reports a generic completed
// response, a nil MessageFunc acknowledges silently.
type HandlerFuncs struct {
	TaskFunc    func(ctx context.Context, task *Task) (*AgentResponse, error)
	MessageFunc func(ctx context.Context, msg Message) error
}

// HandleTask implements Handler.
func (h HandlerFuncs) HandleTask(ctx context.Context, task *Task) (*AgentResponse, error) {
	if h.TaskFunc == nil {
		return &AgentResponse{Success: true, Result: "task completed"}, nil
	}
	return h.TaskFunc(ctx, task)
}

// HandleMessage implements Handler.
func (h HandlerFuncs) HandleMessage(ctx context.Context, msg Message) error {
	if h.MessageFunc == nil {
		return nil
	}
	return h.MessageFunc(ctx, msg)
}
