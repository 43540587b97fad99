// Package approval provides an in-memory implementation of the approval
// service consumed by the protocol's sign-off flow.
//
// InMemoryService keeps requests in a mutex guarded map and exposes
// Approve and Reject methods for programmatic decisions (tests, demos,
// human-in-the-loop frontends). Requests left undecided past their timeout
// transition to TIMEOUT lazily on the next read, so no background goroutine
// is needed.
package approval
