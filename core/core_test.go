package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3, RetryDelay: 100 * time.Millisecond, BackoffMultiplier: 2}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
}

func TestRetryPolicy_Delay_MultiplierBelowOne(t *testing.T) {
	p := RetryPolicy{RetryDelay: 50 * time.Millisecond, BackoffMultiplier: 0}
	// A multiplier below 1 degrades to a constant delay, never shrinking.
	assert.Equal(t, 50*time.Millisecond, p.Delay(0))
	assert.Equal(t, 50*time.Millisecond, p.Delay(3))
}

func TestMessagePriority_Defaults(t *testing.T) {
	var m Message
	assert.Equal(t, PriorityNormal, m.Priority)
	assert.Equal(t, "NORMAL", m.Priority.String())
	assert.Equal(t, "HIGH", PriorityHigh.String())
	assert.Equal(t, "LOW", PriorityLow.String())
}

func TestNewMessage(t *testing.T) {
	m := NewMessage("a", "b", MessageRequest, "subject", map[string]string{"k": "v"})
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "a", m.From)
	assert.Equal(t, "b", m.To)
	assert.Equal(t, MessageRequest, m.Type)
	assert.False(t, m.Timestamp.IsZero())
}

func TestAgent_HasCapability(t *testing.T) {
	a := NewAgent("backend-master", "backend", "api", "database")
	assert.True(t, a.HasCapability("api"))
	assert.False(t, a.HasCapability("frontend"))
	assert.Equal(t, DefaultRetryPolicy(), a.RetryPolicy)
}

func TestHandlerFuncs_Defaults(t *testing.T) {
	h := HandlerFuncs{}

	resp, err := h.HandleTask(context.Background(), NewTask("t", ""))
	assert.NoError(t, err)
	assert.True(t, resp.Success)

	assert.NoError(t, h.HandleMessage(context.Background(), Message{}))
}

func TestAgentNotFoundError(t *testing.T) {
	err := error(&AgentNotFoundError{AgentID: "ghost"})
	assert.Contains(t, err.Error(), "ghost")
	assert.True(t, IsAgentNotFound(err))
	assert.False(t, IsAgentNotFound(context.Canceled))
}

func TestEmitter_SubscribeAndEmit(t *testing.T) {
	e := NewEmitter()

	var got []Event
	unsub := e.Subscribe(EventTaskComplete, func(ev Event) { got = append(got, ev) })

	var all int
	e.SubscribeAll(func(Event) { all++ })

	e.Emit(NewEvent(EventTaskComplete))
	e.Emit(NewEvent(EventMessageSent)) // different type, typed sub ignores

	assert.Len(t, got, 1)
	assert.Equal(t, 2, all)

	unsub()
	e.Emit(NewEvent(EventTaskComplete))
	assert.Len(t, got, 1)
}

func TestApprovalStatus_Terminal(t *testing.T) {
	assert.False(t, ApprovalPending.Terminal())
	assert.True(t, ApprovalApproved.Terminal())
	assert.True(t, ApprovalRejected.Terminal())
	assert.True(t, ApprovalTimeout.Terminal())
}
