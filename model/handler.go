package model

import (
	"context"
	"fmt"

	"github.com/nxtg-ai/forge/core"
)

// HandlerOptions configures the model-to-handler bridge.
type HandlerOptions struct {
	// System is the system prompt describing the agent's role. Defaults to
	// a generic worker prompt.
	System string
}

// handler adapts a Model to core.Handler so a model-backed agent registers
// with the protocol like any hand-written worker.
type handler struct {
	model Model
	opts  HandlerOptions
}

// NewHandler bridges a Model into a core.Handler. Task executions complete
// the task description and report the model's text as the result; queue
// messages of type QUERY and REQUEST are completed and acknowledged, other
// types are acknowledged silently.
func NewHandler(m Model, optFns ...func(o *HandlerOptions)) core.Handler {
	opts := HandlerOptions{
		System: "You are an autonomous worker agent. Complete the given task and report the outcome concisely.",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &handler{model: m, opts: opts}
}

// WithSystem overrides the system prompt.
func WithSystem(system string) func(o *HandlerOptions) {
	return func(o *HandlerOptions) { o.System = system }
}

func (h *handler) HandleTask(ctx context.Context, task *core.Task) (*core.AgentResponse, error) {
	prompt := task.Title
	if task.Description != "" {
		prompt = fmt.Sprintf("%s\n\n%s", task.Title, task.Description)
	}

	resp, err := h.model.Complete(ctx, Request{System: h.opts.System, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("model completion for task %s: %w", task.ID, err)
	}

	return &core.AgentResponse{Success: true, Result: resp.Text}, nil
}

func (h *handler) HandleMessage(ctx context.Context, msg core.Message) error {
	if msg.Type != core.MessageQuery && msg.Type != core.MessageRequest {
		return nil
	}

	prompt := msg.Subject
	if msg.Payload != nil {
		prompt = fmt.Sprintf("%s\n\n%v", msg.Subject, msg.Payload)
	}

	if _, err := h.model.Complete(ctx, Request{System: h.opts.System, Prompt: prompt}); err != nil {
		return fmt.Errorf("model completion for message %s: %w", msg.ID, err)
	}
	return nil
}
