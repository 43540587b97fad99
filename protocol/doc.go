// Package protocol implements the inter-agent coordination protocol:
// per-agent priority queues, a background delivery loop with per-policy
// retries, broadcast, a correlation-based sign-off flow against an external
// approval service and a minimal architecture decision ledger.
//
// The protocol owns all queue state exclusively; callers interact only
// through the documented operations. Delivery to one agent never blocks
// delivery to another: each agent's queue drains on its own goroutine with
// an in-flight guard, so a slow handler stalls only its own queue.
package protocol
