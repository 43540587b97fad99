package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
)

func TestMockModelCannedResponses(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("ping", "pong")

	resp, err := m.Complete(context.Background(), Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)

	resp, err = m.Complete(context.Background(), Request{Prompt: "unregistered"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "unregistered")

	assert.Equal(t, 2, m.Calls())
	assert.Equal(t, "mock", m.Info().Provider)
}

func TestHandlerBridgesTasks(t *testing.T) {
	m := NewMockModel("test-model")
	m.AddResponse("Build the API\n\nExpose task CRUD", "API built")

	h := NewHandler(m)

	resp, err := h.HandleTask(context.Background(), &core.Task{
		ID:          "t1",
		Title:       "Build the API",
		Description: "Expose task CRUD",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "API built", resp.Result)
}

func TestHandlerSurfacesModelFailure(t *testing.T) {
	m := NewMockModel("test-model")
	m.FailWith(errors.New("rate limited"))

	h := NewHandler(m)

	_, err := h.HandleTask(context.Background(), &core.Task{ID: "t1", Title: "anything"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestHandlerMessageRouting(t *testing.T) {
	m := NewMockModel("test-model")
	h := NewHandler(m, WithSystem("You are a QA agent."))

	// QUERY and REQUEST reach the model.
	require.NoError(t, h.HandleMessage(context.Background(), core.Message{Type: core.MessageQuery, Subject: "state?"}))
	require.NoError(t, h.HandleMessage(context.Background(), core.Message{Type: core.MessageRequest, Subject: "do it"}))
	assert.Equal(t, 2, m.Calls())

	// STATUS and BROADCAST are acknowledged without a completion.
	require.NoError(t, h.HandleMessage(context.Background(), core.Message{Type: core.MessageStatus, Subject: "fyi"}))
	require.NoError(t, h.HandleMessage(context.Background(), core.Message{Type: core.MessageBroadcast, Subject: "all hands"}))
	assert.Equal(t, 2, m.Calls())
}
