// Package orchestrator implements the multi-agent orchestration engine on
// top of the coordination protocol.
//
// The Engine tracks tasks, selects execution patterns (sequential,
// parallel, iterative, hierarchical), coordinates dependency graphs,
// executes sign-off gated workflows, reports aggregate progress and decides
// when a decision must escalate to a human. A background queue loop accepts
// tasks for asynchronous execution, and a small command facade exposes the
// engine to interactive frontends.
//
// All dispatch goes through the protocol's direct task path, so agent
// timeouts and registration rules apply uniformly.
package orchestrator
