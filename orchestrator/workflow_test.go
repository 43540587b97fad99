package orchestrator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
	"github.com/nxtg-ai/forge/protocol"
)

// decidedApprovals resolves every sign-off immediately with a fixed status.
type decidedApprovals struct {
	status   core.ApprovalStatus
	feedback string
}

func (d decidedApprovals) RequestApproval(_ context.Context, subject string, impact core.Impact, risk string, opts core.ApprovalOptions) (*core.ApprovalRequest, error) {
	return &core.ApprovalRequest{
		ID: "req-1", Subject: subject, Impact: impact, Risk: risk,
		RequiredApprover: opts.RequiredApprover,
		TimeoutMinutes:   opts.TimeoutMinutes,
		Status:           core.ApprovalPending,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

func (d decidedApprovals) GetRequest(context.Context, string) (*core.ApprovalRequest, error) {
	return &core.ApprovalRequest{ID: "req-1", Status: d.status, Feedback: d.feedback}, nil
}

func newWorkflowEngine(t *testing.T, approvals core.ApprovalService) *Engine {
	t.Helper()
	p := protocol.New(
		protocol.WithSignOffPollInterval(2*time.Millisecond),
		protocol.WithApprovals(approvals),
	)
	e := New(p)
	t.Cleanup(e.Stop)
	return e
}

func step(id, agentID string, optFns ...func(*core.WorkflowStep)) core.WorkflowStep {
	s := core.WorkflowStep{
		ID:      id,
		Name:    id,
		AgentID: agentID,
		Task:    core.NewTask(id, "step "+id),
	}
	for _, fn := range optFns {
		fn(&s)
	}
	return s
}

func TestWorkflowRunsAllSteps(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalApproved, feedback: "approved"})
	e.Protocol().RegisterAgent(core.NewAgent("builder", "backend"), core.HandlerFuncs{})
	e.Protocol().RegisterAgent(core.NewAgent("tester", "qa"), core.HandlerFuncs{})

	wf := &core.Workflow{
		ID:   "wf-1",
		Name: "release",
		Steps: []core.WorkflowStep{
			step("build", "builder"),
			step("verify", "tester", func(s *core.WorkflowStep) { s.RequiresSignOff = true }),
		},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.True(t, result.Success)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, core.StepCompleted, result.Steps[0].Status)
	assert.Equal(t, core.StepCompleted, result.Steps[1].Status)
}

func TestWorkflowHaltsOnMissingAgent(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalApproved})
	e.Protocol().RegisterAgent(core.NewAgent("builder", "backend"), core.HandlerFuncs{})

	var afterHalt atomic.Int32
	e.Protocol().RegisterAgent(core.NewAgent("later", "qa"), core.HandlerFuncs{
		TaskFunc: func(context.Context, *core.Task) (*core.AgentResponse, error) {
			afterHalt.Add(1)
			return &core.AgentResponse{Success: true}, nil
		},
	})

	wf := &core.Workflow{
		ID: "wf-2",
		Steps: []core.WorkflowStep{
			step("build", "builder"),
			step("missing", "ghost"),
			step("never", "later"),
		},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 2, "steps after the halt are never appended")
	assert.Equal(t, core.StepFailed, result.Steps[1].Status)
	assert.Contains(t, result.Steps[1].Error, "not found")
	assert.Equal(t, int32(0), afterHalt.Load())
}

func TestWorkflowHaltsOnRejectedSignOff(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalRejected, feedback: "needs more tests"})
	e.Protocol().RegisterAgent(core.NewAgent("builder", "backend"), core.HandlerFuncs{})

	wf := &core.Workflow{
		ID: "wf-3",
		Steps: []core.WorkflowStep{
			step("gated", "builder", func(s *core.WorkflowStep) { s.RequiresSignOff = true }),
			step("never", "builder"),
		},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, core.StepBlocked, result.Steps[0].Status)
	assert.Contains(t, result.Steps[0].Error, "Sign-off rejected")
	assert.Contains(t, result.Steps[0].Error, "needs more tests")
}

func TestWorkflowHaltsOnStepFailure(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalApproved})
	e.Protocol().RegisterAgent(core.NewAgent("breaker", "backend"), core.HandlerFuncs{
		TaskFunc: func(context.Context, *core.Task) (*core.AgentResponse, error) {
			return &core.AgentResponse{Success: false, Error: "step exploded"}, nil
		},
	})

	wf := &core.Workflow{
		ID: "wf-4",
		Steps: []core.WorkflowStep{
			step("boom", "breaker"),
			step("never", "breaker"),
		},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.False(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, core.StepFailed, result.Steps[0].Status)
	assert.Contains(t, result.Steps[0].Error, "step exploded")
}

func TestWorkflowRetryOnFailure(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalApproved})

	agent := core.NewAgent("flaky", "backend")
	agent.RetryPolicy = core.RetryPolicy{MaxRetries: 3, RetryDelay: time.Millisecond, BackoffMultiplier: 1}

	var calls atomic.Int32
	e.Protocol().RegisterAgent(agent, core.HandlerFuncs{
		TaskFunc: func(context.Context, *core.Task) (*core.AgentResponse, error) {
			if calls.Add(1) < 3 {
				return &core.AgentResponse{Success: false, Error: "transient"}, nil
			}
			return &core.AgentResponse{Success: true}, nil
		},
	})

	wf := &core.Workflow{
		ID: "wf-5",
		Steps: []core.WorkflowStep{
			step("retry me", "flaky", func(s *core.WorkflowStep) { s.RetryOnFailure = true }),
		},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.True(t, result.Success)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, core.StepCompleted, result.Steps[0].Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestWorkflowNoRetryByDefault(t *testing.T) {
	e := newWorkflowEngine(t, decidedApprovals{status: core.ApprovalApproved})

	var calls atomic.Int32
	e.Protocol().RegisterAgent(core.NewAgent("flaky", "backend"), core.HandlerFuncs{
		TaskFunc: func(context.Context, *core.Task) (*core.AgentResponse, error) {
			calls.Add(1)
			return &core.AgentResponse{Success: false, Error: "transient"}, nil
		},
	})

	wf := &core.Workflow{
		ID:    "wf-6",
		Steps: []core.WorkflowStep{step("once", "flaky")},
	}

	result := e.ExecuteWorkflowWithSignOff(context.Background(), wf)

	assert.False(t, result.Success)
	assert.Equal(t, int32(1), calls.Load())
}
