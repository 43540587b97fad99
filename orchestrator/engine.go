package orchestrator

import (
	"sync"
	"time"

	"github.com/nxtg-ai/forge/core"
	"github.com/nxtg-ai/forge/logging"
	"github.com/nxtg-ai/forge/protocol"
)

// Options configures an Engine.
type Options struct {
	// Emitter receives engine events. Defaults to the protocol's emitter so
	// subscribers see protocol and engine events on one stream.
	Emitter *core.Emitter

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Alignment is consulted by ShouldEscalate. Optional; without it only
	// the impact rule applies.
	Alignment core.AlignmentChecker

	// Artifacts persists artifacts reported by agent responses. Optional.
	Artifacts core.ArtifactStore

	// MaxIterations caps the ITERATIVE pattern's refinement loop.
	// Defaults to 5.
	MaxIterations int

	// MaxParallel bounds concurrent dispatches in ExecuteParallel.
	// Defaults to 4.
	MaxParallel int

	// EscalationThreshold is the alignment score below which a decision
	// escalates. Defaults to 0.5.
	EscalationThreshold float64

	// QueueInterval is the background task queue poll period.
	// Defaults to 25ms.
	QueueInterval time.Duration
}

// Engine orchestrates task execution across the agents registered with its
// protocol. Construct with New; the background queue loop requires an
// explicit Start and Stop.
type Engine struct {
	protocol *protocol.Protocol
	opts     Options
	emitter  *core.Emitter
	logger   logging.Logger

	mu        sync.RWMutex
	tasks     map[string]*core.Task
	taskOrder []string
	status    core.CoordinationStatus
	durations []time.Duration

	queueMu   sync.Mutex
	taskQueue []queuedTask

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	interactionMu sync.Mutex
	interactions  []Interaction

	commandMu sync.Mutex
	commands  []CommandRecord
	yoloMode  bool
	yoloStats YOLOStats
}

// New constructs an Engine bound to a protocol.
func New(p *protocol.Protocol, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Emitter:             p.Emitter(),
		Logger:              logging.NoOpLogger{},
		MaxIterations:       5,
		MaxParallel:         4,
		EscalationThreshold: 0.5,
		QueueInterval:       25 * time.Millisecond,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		protocol: p,
		opts:     opts,
		emitter:  opts.Emitter,
		logger:   opts.Logger,
		tasks:    make(map[string]*core.Task),
		status:   core.StatusIdle,
	}
}

// WithLogger supplies a structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithEmitter supplies a dedicated event emitter.
func WithEmitter(e *core.Emitter) func(o *Options) {
	return func(o *Options) { o.Emitter = e }
}

// WithAlignment supplies the alignment checker consulted on escalation.
func WithAlignment(c core.AlignmentChecker) func(o *Options) {
	return func(o *Options) { o.Alignment = c }
}

// WithArtifacts supplies the artifact store for agent outputs.
func WithArtifacts(s core.ArtifactStore) func(o *Options) {
	return func(o *Options) { o.Artifacts = s }
}

// WithMaxIterations overrides the ITERATIVE pattern cap.
func WithMaxIterations(n int) func(o *Options) {
	return func(o *Options) { o.MaxIterations = n }
}

// WithMaxParallel overrides the parallel batch concurrency bound.
func WithMaxParallel(n int) func(o *Options) {
	return func(o *Options) { o.MaxParallel = n }
}

// WithEscalationThreshold overrides the alignment score threshold.
func WithEscalationThreshold(v float64) func(o *Options) {
	return func(o *Options) { o.EscalationThreshold = v }
}

// WithQueueInterval overrides the background queue poll period.
func WithQueueInterval(d time.Duration) func(o *Options) {
	return func(o *Options) { o.QueueInterval = d }
}

// Protocol returns the protocol the engine dispatches through.
func (e *Engine) Protocol() *protocol.Protocol { return e.protocol }

// Emitter returns the emitter engine events are published on.
func (e *Engine) Emitter() *core.Emitter { return e.emitter }

// Status returns the engine-wide coordination status.
func (e *Engine) Status() core.CoordinationStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Engine) setStatus(s core.CoordinationStatus) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Healthy reports whether the engine is operational. Only the ERROR status
// marks it unhealthy; IDLE, COORDINATING and COMPLETE are all healthy.
func (e *Engine) Healthy() bool {
	return e.Status() != core.StatusError
}

// Task returns a copy of a tracked task by id.
func (e *Engine) Task(taskID string) (*core.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	task, ok := e.tasks[taskID]
	if !ok {
		return nil, false
	}
	return task.Clone(), true
}

// Tasks returns copies of all tracked tasks in first-seen order.
func (e *Engine) Tasks() []*core.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*core.Task, 0, len(e.taskOrder))
	for _, id := range e.taskOrder {
		out = append(out, e.tasks[id].Clone())
	}
	return out
}

// track registers a task with the engine's progress tracking. Tracking the
// same id again keeps the existing entry.
func (e *Engine) track(task *core.Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, seen := e.tasks[task.ID]; !seen {
		e.taskOrder = append(e.taskOrder, task.ID)
	}
	e.tasks[task.ID] = task
}

// setTaskStatus transitions a tracked task and emits taskStatusChanged.
func (e *Engine) setTaskStatus(task *core.Task, status core.TaskStatus) {
	e.mu.Lock()
	task.Status = status
	e.mu.Unlock()

	ev := core.NewEvent(core.EventTaskStatusChanged)
	ev.TaskID = task.ID
	ev.Status = status
	e.emitter.Emit(ev)
}

// recordDuration feeds the ETA estimator with a completed task duration.
func (e *Engine) recordDuration(d time.Duration) {
	e.mu.Lock()
	e.durations = append(e.durations, d)
	e.mu.Unlock()
}

// saveArtifacts records response artifact names on the task and, when a
// store is configured, persists the textual result under each name.
func (e *Engine) saveArtifacts(task *core.Task, resp *core.AgentResponse) {
	if resp == nil || len(resp.Artifacts) == 0 {
		return
	}

	e.mu.Lock()
	task.Artifacts = append(task.Artifacts, resp.Artifacts...)
	e.mu.Unlock()

	if e.opts.Artifacts == nil {
		return
	}
	var data []byte
	if s, ok := resp.Result.(string); ok {
		data = []byte(s)
	}
	for _, name := range resp.Artifacts {
		if err := e.opts.Artifacts.Save(task.ID, name, data); err != nil {
			e.logger.Warn("failed to save artifact", "task_id", task.ID, "artifact", name, "error", err)
		}
	}
}
