package protocol

import (
	"time"

	"github.com/nxtg-ai/forge/core"
)

// queuedMessage wraps a message with its delivery bookkeeping. attempts
// counts handler invocations so far; notBefore delays retried messages
// according to the agent's backoff policy.
type queuedMessage struct {
	msg       core.Message
	attempts  int
	notBefore time.Time
	seq       uint64
}

// messageQueue is a priority-ordered queue for one agent. Messages are kept
// sorted by (priority descending, sequence ascending) so delivery order is
// HIGH, NORMAL, LOW with FIFO inside each class. Not safe for concurrent
// use; the protocol serializes access under its own mutex.
type messageQueue struct {
	items []*queuedMessage
}

func newMessageQueue() *messageQueue { return &messageQueue{} }

// push inserts the message keeping the priority/FIFO order. A retried
// message keeps its original sequence number and therefore its FIFO slot
// within its priority class.
func (q *messageQueue) push(qm *queuedMessage) {
	idx := len(q.items)
	for i, existing := range q.items {
		if qm.msg.Priority > existing.msg.Priority ||
			(qm.msg.Priority == existing.msg.Priority && qm.seq < existing.seq) {
			idx = i
			break
		}
	}
	q.items = append(q.items, nil)
	copy(q.items[idx+1:], q.items[idx:])
	q.items[idx] = qm
}

// pop removes and returns the first message eligible for delivery at the
// given time, or nil when nothing is ready. Messages still waiting out a
// retry delay are skipped without disturbing their order.
func (q *messageQueue) pop(now time.Time) *queuedMessage {
	for i, qm := range q.items {
		if qm.notBefore.After(now) {
			continue
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		return qm
	}
	return nil
}

// len returns the number of queued messages, including delayed retries.
func (q *messageQueue) len() int { return len(q.items) }

// clear drops all pending messages.
func (q *messageQueue) clear() { q.items = nil }
