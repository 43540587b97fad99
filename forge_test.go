package forge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
	"github.com/nxtg-ai/forge/internal/testutil"
	"github.com/nxtg-ai/forge/model"
)

func newForge(t *testing.T, optFns ...func(o *Options)) *Forge {
	t.Helper()
	opts := append([]func(o *Options){func(o *Options) {
		o.Config.TickInterval = 2 * time.Millisecond
		o.Config.SignOffPollInterval = 2 * time.Millisecond
	}}, optFns...)
	f := New(opts...)
	t.Cleanup(f.Stop)
	return f
}

func TestForgeEndToEnd(t *testing.T) {
	f := newForge(t)

	f.RegisterAgent(core.NewAgent("backend-1", "backend", "api"), core.HandlerFuncs{
		TaskFunc: func(_ context.Context, task *core.Task) (*core.AgentResponse, error) {
			return &core.AgentResponse{Success: true, Result: "built " + task.Title}, nil
		},
	})
	f.Start()

	result := f.Execute(context.Background(), core.NewTask("api gateway", "expose the api"), core.PatternSequential)
	require.True(t, result.Success)

	progress := f.Progress()
	assert.Equal(t, 1, progress.TotalTasks)
	assert.Equal(t, core.PhaseCompleted, progress.CurrentPhase)
}

func TestForgeModelAgent(t *testing.T) {
	f := newForge(t)

	m := model.NewMockModel("mock-1")
	m.AddResponse("write docs", "docs written")
	f.RegisterModelAgent(core.NewAgent("writer", "backend"), m)

	result := f.Execute(context.Background(), core.NewTask("write docs", ""), core.PatternSequential)

	require.True(t, result.Success)
	require.Contains(t, result.AgentResults, "writer")
	assert.Equal(t, "docs written", result.AgentResults["writer"].Result)
}

func TestForgeCoordination(t *testing.T) {
	f := newForge(t)
	f.RegisterAgent(core.NewAgent("worker", "backend"), core.HandlerFuncs{})

	design := testutil.NewTaskBuilder("design").Build()
	implement := testutil.NewTaskBuilder("implement").DependsOn("design").Build()

	result, err := f.CoordinateAgents(context.Background(), []*core.Task{implement, design})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.TaskResults, 2)
}

func TestForgeMessaging(t *testing.T) {
	f := newForge(t)
	f.RegisterAgent(core.NewAgent("worker", "backend"), core.HandlerFuncs{})
	f.Start()

	require.NoError(t, f.SendMessage("worker", core.NewMessage("me", "worker", core.MessageStatus, "hello", nil)))
	f.Broadcast(core.NewMessage("me", "", core.MessageStatus, "everyone", nil))

	err := f.SendMessage("ghost", core.NewMessage("me", "ghost", core.MessageStatus, "lost", nil))
	assert.True(t, core.IsAgentNotFound(err))
}

func TestForgeEscalation(t *testing.T) {
	f := newForge(t)

	escalate, err := f.ShouldEscalate(context.Background(), core.Decision{Impact: core.ImpactHigh})

	require.NoError(t, err)
	assert.True(t, escalate)
}
