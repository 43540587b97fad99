package protocol

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nxtg-ai/forge/approval"
	"github.com/nxtg-ai/forge/core"
	"github.com/nxtg-ai/forge/logging"
)

// Options configures a Protocol instance using the functional options
// pattern.
type Options struct {
	// TickInterval is the delivery loop period. Defaults to 25ms.
	TickInterval time.Duration

	// SignOffPollInterval is how often a pending sign-off request is
	// re-checked against the approval service. Defaults to 1s.
	SignOffPollInterval time.Duration

	// SignOffTimeoutMinutes bounds how long a sign-off request stays open
	// when the approval service does not time it out first. Defaults to 60.
	SignOffTimeoutMinutes int

	// Approvals is the external approval service consumed by the sign-off
	// flow. Defaults to an in-memory implementation.
	Approvals core.ApprovalService

	// Emitter receives protocol events. Defaults to a fresh emitter.
	Emitter *core.Emitter

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger
}

// registration holds everything the protocol tracks per agent. inFlight
// guards against dispatching a second delivery while one is still running,
// which both serializes deliveries per agent and isolates slow handlers.
type registration struct {
	agent    *core.Agent
	handler  core.Handler
	queue    *messageQueue
	inFlight bool
}

// Protocol provides reliable, priority-ordered, retryable delivery of
// messages to registered agent handlers plus the sign-off primitive.
//
// Construct with New, then call Start to run the background delivery loop
// and Stop to halt it. All exported methods are safe for concurrent use.
type Protocol struct {
	opts      Options
	emitter   *core.Emitter
	logger    logging.Logger
	approvals core.ApprovalService

	mu     sync.RWMutex
	agents map[string]*registration
	seq    uint64

	runMu   sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	ledgerMu  sync.RWMutex
	decisions []*core.ArchitectureDecision
}

// New constructs a Protocol with sensible defaults. The delivery loop does
// not run until Start is called.
func New(optFns ...func(o *Options)) *Protocol {
	opts := Options{
		TickInterval:          25 * time.Millisecond,
		SignOffPollInterval:   time.Second,
		SignOffTimeoutMinutes: 60,
		Approvals:             approval.NewInMemoryService(),
		Emitter:               core.NewEmitter(),
		Logger:                logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Protocol{
		opts:      opts,
		emitter:   opts.Emitter,
		logger:    opts.Logger,
		approvals: opts.Approvals,
		agents:    make(map[string]*registration),
	}
}

// WithTickInterval overrides the delivery loop period.
func WithTickInterval(d time.Duration) func(o *Options) {
	return func(o *Options) { o.TickInterval = d }
}

// WithSignOffPollInterval overrides the sign-off polling period.
func WithSignOffPollInterval(d time.Duration) func(o *Options) {
	return func(o *Options) { o.SignOffPollInterval = d }
}

// WithApprovals supplies the external approval service.
func WithApprovals(s core.ApprovalService) func(o *Options) {
	return func(o *Options) { o.Approvals = s }
}

// WithEmitter supplies a shared event emitter.
func WithEmitter(e *core.Emitter) func(o *Options) {
	return func(o *Options) { o.Emitter = e }
}

// WithLogger supplies a structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// Emitter returns the emitter protocol events are published on.
func (p *Protocol) Emitter() *core.Emitter { return p.emitter }

// Start launches the background delivery loop. Calling Start on a running
// protocol is a no-op.
func (p *Protocol) Start() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true

	go p.deliveryLoop(ctx)
}

// Stop halts the delivery loop and waits for it to exit. Queued messages
// are retained; a later Start resumes delivery. In-flight handler calls are
// cancelled via their context.
func (p *Protocol) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	<-p.done
	p.running = false
}

// RegisterAgent creates an empty priority queue for the agent. The handler
// is optional: when nil, delivered messages are surfaced via the
// messageReceived event instead of being consumed. Re-registering an agent
// id replaces the previous registration and drops its queue.
func (p *Protocol) RegisterAgent(agent *core.Agent, handler core.Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.agents[agent.ID] = &registration{
		agent:   agent,
		handler: handler,
		queue:   newMessageQueue(),
	}
	p.logger.Debug("registered agent", "agent_id", agent.ID, "role", agent.Role)
}

// Agent returns a registered agent by id.
func (p *Protocol) Agent(agentID string) (*core.Agent, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	reg, ok := p.agents[agentID]
	if !ok {
		return nil, false
	}
	return reg.agent, true
}

// Agents returns all registered agents ordered by descending priority, id
// breaking ties. The slice is a snapshot safe for caller mutation.
func (p *Protocol) Agents() []*core.Agent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	agents := make([]*core.Agent, 0, len(p.agents))
	for _, reg := range p.agents {
		agents = append(agents, reg.agent)
	}
	sort.Slice(agents, func(i, j int) bool {
		if agents[i].Priority != agents[j].Priority {
			return agents[i].Priority > agents[j].Priority
		}
		return agents[i].ID < agents[j].ID
	})
	return agents
}

// SendMessage enqueues a message for one agent ordered by priority (HIGH
// before NORMAL before LOW, FIFO within a class) and emits messageSent.
// Sending to an unregistered id fails immediately with AgentNotFoundError
// and is never retried.
func (p *Protocol) SendMessage(agentID string, msg core.Message) error {
	p.mu.Lock()
	reg, ok := p.agents[agentID]
	if !ok {
		p.mu.Unlock()
		return &core.AgentNotFoundError{AgentID: agentID}
	}

	if msg.ID == "" {
		msg.ID = core.NewMessage(msg.From, agentID, msg.Type, msg.Subject, msg.Payload).ID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	msg.To = agentID

	p.seq++
	reg.queue.push(&queuedMessage{msg: msg, seq: p.seq})
	p.mu.Unlock()

	ev := core.NewEvent(core.EventMessageSent)
	ev.AgentID = agentID
	ev.Message = &msg
	p.emitter.Emit(ev)

	return nil
}

// Broadcast forces the message type to BROADCAST, enqueues a copy to every
// registered agent and emits messageBroadcast once (not once per agent).
func (p *Protocol) Broadcast(msg core.Message) {
	msg.Type = core.MessageBroadcast
	if msg.ID == "" {
		msg.ID = core.NewMessage(msg.From, "", msg.Type, msg.Subject, msg.Payload).ID
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	p.mu.Lock()
	for agentID, reg := range p.agents {
		cp := msg
		cp.To = agentID
		p.seq++
		reg.queue.push(&queuedMessage{msg: cp, seq: p.seq})
	}
	p.mu.Unlock()

	ev := core.NewEvent(core.EventMessageBroadcast)
	ev.Message = &msg
	p.emitter.Emit(ev)
}

// QueueStats reports the total number of queued messages and the per-agent
// breakdown. Registered agents with empty queues appear with a count of
// zero. Intended for observability and tests, not control flow.
type QueueStats struct {
	Total   int            `json:"total"`
	ByAgent map[string]int `json:"by_agent"`
}

// QueueStats returns a snapshot of current queue depths.
func (p *Protocol) QueueStats() QueueStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	stats := QueueStats{ByAgent: make(map[string]int, len(p.agents))}
	for agentID, reg := range p.agents {
		n := reg.queue.len()
		stats.ByAgent[agentID] = n
		stats.Total += n
	}
	return stats
}

// ClearQueue drops all pending messages for the given agents, or for every
// agent when none are named.
func (p *Protocol) ClearQueue(agentIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(agentIDs) == 0 {
		for _, reg := range p.agents {
			reg.queue.clear()
		}
		return
	}
	for _, id := range agentIDs {
		if reg, ok := p.agents[id]; ok {
			reg.queue.clear()
		}
	}
}

// ExecuteTask invokes the agent's task handler directly, bypassing the
// message queue. This is the dispatch path used by the orchestration
// engine. The agent's timeout, when set, bounds the handler call.
func (p *Protocol) ExecuteTask(ctx context.Context, agent *core.Agent, task *core.Task) (*core.AgentResponse, error) {
	p.mu.RLock()
	reg, ok := p.agents[agent.ID]
	p.mu.RUnlock()
	if !ok {
		return nil, &core.AgentNotFoundError{AgentID: agent.ID}
	}
	if reg.handler == nil {
		return nil, fmt.Errorf("agent %q registered without a task handler", agent.ID)
	}

	if reg.agent.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, reg.agent.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := reg.handler.HandleTask(ctx, task)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = &core.AgentResponse{Success: true}
	}
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	return resp, nil
}

// AssignTask executes a task on the named agent via the direct path and
// acknowledges completion. Unknown agent ids fail with AgentNotFoundError;
// an unsuccessful response is surfaced as an error.
func (p *Protocol) AssignTask(ctx context.Context, agentID string, task *core.Task) (*core.Assignment, error) {
	p.mu.RLock()
	reg, ok := p.agents[agentID]
	p.mu.RUnlock()
	if !ok {
		return nil, &core.AgentNotFoundError{AgentID: agentID}
	}

	resp, err := p.ExecuteTask(ctx, reg.agent, task)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("task %s failed on agent %s: %s", task.ID, agentID, resp.Error)
	}

	return &core.Assignment{TaskID: task.ID, AgentID: agentID, Status: "completed"}, nil
}
