package core

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of message being sent between agents.
type MessageType string

const (
	// MessageRequest asks an agent to perform work or answer a question.
	MessageRequest MessageType = "REQUEST"
	// MessageResponse carries a result back to the requesting agent.
	MessageResponse MessageType = "RESPONSE"
	// MessageBroadcast is delivered to every registered agent.
	MessageBroadcast MessageType = "BROADCAST"
	// MessageHandoff transfers ownership of a task to another agent.
	MessageHandoff MessageType = "HANDOFF"
	// MessageQuery asks another agent for information.
	MessageQuery MessageType = "QUERY"
	// MessageStatus is a general status update.
	MessageStatus MessageType = "STATUS"
	// MessageError notifies an agent of a failure elsewhere.
	MessageError MessageType = "ERROR"
)

// MessagePriority orders queued messages. Higher values are delivered first;
// the zero value is PriorityNormal so an unset priority defaults to NORMAL.
type MessagePriority int

const (
	// PriorityLow is delivered after all NORMAL and HIGH messages.
	PriorityLow MessagePriority = -1
	// PriorityNormal is the default priority.
	PriorityNormal MessagePriority = 0
	// PriorityHigh is delivered before NORMAL and LOW messages.
	PriorityHigh MessagePriority = 1
)

// String returns the wire name of the priority class.
func (p MessagePriority) String() string {
	switch {
	case p >= PriorityHigh:
		return "HIGH"
	case p <= PriorityLow:
		return "LOW"
	default:
		return "NORMAL"
	}
}

// Message is the unit of communication between agents. A message is
// immutable once enqueued; only its queue position may change due to
// priority ordering.
type Message struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Type      MessageType     `json:"type"`
	Subject   string          `json:"subject,omitempty"`
	Payload   any             `json:"payload,omitempty"`
	Priority  MessagePriority `json:"priority"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage constructs a message with a generated id and current timestamp.
func NewMessage(from, to string, typ MessageType, subject string, payload any) Message {
	return Message{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Type:      typ,
		Subject:   subject,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
