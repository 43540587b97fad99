package protocol

import (
	"context"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// deliveryLoop drains agent queues until the context is cancelled. Each tick
// dispatches at most one message per agent; agents with a delivery already
// in flight are skipped so a slow handler never stalls its peers.
func (p *Protocol) deliveryLoop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.tick(ctx, now)
		}
	}
}

func (p *Protocol) tick(ctx context.Context, now time.Time) {
	type dispatch struct {
		reg *registration
		qm  *queuedMessage
	}

	var ready []dispatch

	p.mu.Lock()
	for _, reg := range p.agents {
		if reg.inFlight {
			continue
		}
		qm := reg.queue.pop(now)
		if qm == nil {
			continue
		}
		reg.inFlight = true
		ready = append(ready, dispatch{reg: reg, qm: qm})
	}
	p.mu.Unlock()

	for _, d := range ready {
		go p.deliver(ctx, d.reg, d.qm)
	}
}

// deliver invokes the agent's message handler once and either acknowledges,
// requeues with backoff or drops the message. A message whose handler keeps
// failing is invoked at most MaxRetries+1 times in total, then dropped with
// exactly one messageFailed event. A consumed message is dropped silently;
// messageReceived fires only for agents registered without a handler, where
// the event is the delivery.
func (p *Protocol) deliver(ctx context.Context, reg *registration, qm *queuedMessage) {
	agent := reg.agent

	var err error
	if reg.handler != nil {
		hctx := ctx
		if agent.Timeout > 0 {
			var cancel context.CancelFunc
			hctx, cancel = context.WithTimeout(ctx, agent.Timeout)
			defer cancel()
		}
		err = reg.handler.HandleMessage(hctx, qm.msg)
	}
	qm.attempts++

	p.mu.Lock()
	reg.inFlight = false
	if err != nil && qm.attempts <= agent.RetryPolicy.MaxRetries {
		qm.notBefore = time.Now().Add(agent.RetryPolicy.Delay(qm.attempts - 1))
		reg.queue.push(qm)
		p.mu.Unlock()
		p.logger.Warn("message delivery failed, will retry",
			"agent_id", agent.ID, "message_id", qm.msg.ID, "attempt", qm.attempts, "error", err)
		return
	}
	p.mu.Unlock()

	if err != nil {
		p.logger.Error("message delivery failed permanently",
			"agent_id", agent.ID, "message_id", qm.msg.ID, "attempts", qm.attempts, "error", err)
		ev := core.NewEvent(core.EventMessageFailed)
		ev.AgentID = agent.ID
		ev.Message = &qm.msg
		ev.Error = err.Error()
		p.emitter.Emit(ev)
		return
	}

	if reg.handler != nil {
		return
	}

	ev := core.NewEvent(core.EventMessageReceived)
	ev.AgentID = agent.ID
	ev.Message = &qm.msg
	p.emitter.Emit(ev)
}
