// Package core defines the shared domain model of the Forge coordination
// engine: agents, tasks, messages, workflows, execution results and the
// event types exchanged between the Coordination Protocol and the
// Orchestration Engine.
//
// The canonical collaborator interfaces (ApprovalService, AlignmentChecker,
// ArtifactStore) also live here to keep domain contracts central and avoid
// dependency cycles. Implementation packages (approval, alignment, artifact)
// provide concrete backends that can be swapped without touching calling
// code.
package core
