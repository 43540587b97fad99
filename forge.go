// Package forge provides a high-level façade over the coordination protocol
// and the orchestration engine, enabling rapid construction of multi-agent
// coordination systems. Most applications interact with this package by:
//  1. Creating a Forge via New() (optionally overriding default in-memory services)
//  2. Registering one or more agents (hand-written handlers or model-backed)
//  3. Starting the background loops, then executing tasks, coordination runs
//     or sign-off gated workflows
//
// The façade delegates message delivery to protocol.Protocol and execution
// to orchestrator.Engine while keeping setup ergonomics concise. All
// defaults are safe for local development and testing; production
// deployments typically supply a durable artifact store and a structured
// logger.
package forge

import (
	"context"

	"github.com/nxtg-ai/forge/approval"
	"github.com/nxtg-ai/forge/artifact"
	"github.com/nxtg-ai/forge/config"
	"github.com/nxtg-ai/forge/core"
	"github.com/nxtg-ai/forge/logging"
	"github.com/nxtg-ai/forge/model"
	"github.com/nxtg-ai/forge/orchestrator"
	"github.com/nxtg-ai/forge/protocol"
)

// Options configures the Forge instance.
type Options struct {
	// Config supplies tunables for the protocol and engine. Defaults to
	// config.Default().
	Config config.Config

	// Approvals backs the sign-off flow (defaults to in-memory).
	Approvals core.ApprovalService

	// Alignment is consulted on escalation decisions (optional).
	Alignment core.AlignmentChecker

	// Artifacts persists agent outputs (defaults to in-memory; set
	// Config.ArtifactDir to use the filesystem store instead).
	Artifacts core.ArtifactStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Forge is the high-level façade aggregating the protocol and the engine.
type Forge struct {
	opts     Options
	protocol *protocol.Protocol
	engine   *orchestrator.Engine
}

// New creates a Forge instance with optional overrides. Any unset service
// is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Forge {
	opts := Options{
		Config:    config.Default(),
		Approvals: approval.NewInMemoryService(),
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Artifacts == nil {
		if opts.Config.ArtifactDir != "" {
			opts.Artifacts = artifact.NewFSStore(opts.Config.ArtifactDir)
		} else {
			opts.Artifacts = artifact.NewInMemoryStore()
		}
	}

	p := protocol.New(
		protocol.WithTickInterval(opts.Config.TickInterval),
		protocol.WithSignOffPollInterval(opts.Config.SignOffPollInterval),
		protocol.WithApprovals(opts.Approvals),
		protocol.WithLogger(opts.Logger),
	)

	e := orchestrator.New(p,
		orchestrator.WithLogger(opts.Logger),
		orchestrator.WithAlignment(opts.Alignment),
		orchestrator.WithArtifacts(opts.Artifacts),
		orchestrator.WithMaxIterations(opts.Config.MaxIterations),
		orchestrator.WithMaxParallel(opts.Config.MaxParallel),
		orchestrator.WithEscalationThreshold(opts.Config.EscalationThreshold),
	)

	return &Forge{opts: opts, protocol: p, engine: e}
}

// Protocol exposes the underlying coordination protocol.
func (f *Forge) Protocol() *protocol.Protocol { return f.protocol }

// Engine exposes the underlying orchestration engine.
func (f *Forge) Engine() *orchestrator.Engine { return f.engine }

// Start launches the protocol delivery loop and the engine queue loop.
func (f *Forge) Start() {
	f.protocol.Start()
	f.engine.Start()
}

// Stop halts both background loops, waiting for in-flight work to finish.
func (f *Forge) Stop() {
	f.engine.Stop()
	f.protocol.Stop()
}

// RegisterAgent adds an agent with an explicit handler.
func (f *Forge) RegisterAgent(agent *core.Agent, handler core.Handler) {
	f.protocol.RegisterAgent(agent, handler)
}

// RegisterModelAgent adds an agent whose work is delegated to a language
// model via the model-to-handler bridge.
func (f *Forge) RegisterModelAgent(agent *core.Agent, m model.Model, optFns ...func(o *model.HandlerOptions)) {
	f.protocol.RegisterAgent(agent, model.NewHandler(m, optFns...))
}

// Execute runs a single task under the given execution pattern.
func (f *Forge) Execute(ctx context.Context, task *core.Task, pattern core.ExecutionPattern) *core.ExecutionResult {
	return f.engine.Execute(ctx, task, pattern)
}

// CoordinateAgents executes interdependent tasks in dependency order,
// drawing assignments from every registered agent. Use the engine directly
// to restrict a run to a subset of agents.
func (f *Forge) CoordinateAgents(ctx context.Context, tasks []*core.Task) (*core.CoordinationResult, error) {
	return f.engine.CoordinateAgents(ctx, f.protocol.Agents(), tasks)
}

// ExecuteWorkflow runs a sign-off gated workflow to completion or halt.
func (f *Forge) ExecuteWorkflow(ctx context.Context, workflow *core.Workflow) *core.WorkflowResult {
	return f.engine.ExecuteWorkflowWithSignOff(ctx, workflow)
}

// SendMessage enqueues a message for one agent.
func (f *Forge) SendMessage(agentID string, msg core.Message) error {
	return f.protocol.SendMessage(agentID, msg)
}

// Broadcast enqueues a copy of the message for every registered agent.
func (f *Forge) Broadcast(msg core.Message) {
	f.protocol.Broadcast(msg)
}

// RequestSignOff opens and polls an approval request for an artifact.
func (f *Forge) RequestSignOff(ctx context.Context, approverRole, artifactName string) (*core.SignOff, error) {
	return f.protocol.RequestSignOff(ctx, approverRole, artifactName)
}

// ShouldEscalate reports whether a decision requires human review.
func (f *Forge) ShouldEscalate(ctx context.Context, decision core.Decision) (bool, error) {
	return f.engine.ShouldEscalate(ctx, decision)
}

// Progress returns the engine's aggregate progress snapshot.
func (f *Forge) Progress() *core.ProgressState {
	return f.engine.GetProgress()
}
