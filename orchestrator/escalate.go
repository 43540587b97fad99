package orchestrator

import (
	"context"

	"github.com/nxtg-ai/forge/core"
)

// ShouldEscalate decides whether a decision needs human review. High impact
// decisions always escalate. Otherwise the alignment checker is consulted
// and a score below the engine's threshold escalates. When the checker
// fails the engine escalates conservatively and surfaces the error.
func (e *Engine) ShouldEscalate(ctx context.Context, decision core.Decision) (bool, error) {
	if decision.Impact == core.ImpactHigh {
		return true, nil
	}

	if e.opts.Alignment == nil {
		return false, nil
	}

	report, err := e.opts.Alignment.CheckAlignment(ctx, decision)
	if err != nil {
		e.logger.Warn("alignment check failed, escalating", "decision_id", decision.ID, "error", err)
		return true, err
	}

	if report.Score < e.opts.EscalationThreshold {
		e.logger.Info("decision escalated on alignment score",
			"decision_id", decision.ID, "score", report.Score, "threshold", e.opts.EscalationThreshold)
		return true, nil
	}
	return false, nil
}
