package protocol

import (
	"fmt"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// ProposeArchitectureDecision records a proposed decision in the ledger and
// returns the stored entry.
func (p *Protocol) ProposeArchitectureDecision(title, description string) *core.ArchitectureDecision {
	d := core.NewArchitectureDecision(title, description)

	p.ledgerMu.Lock()
	p.decisions = append(p.decisions, d)
	p.ledgerMu.Unlock()

	p.logger.Info("architecture decision proposed", "decision_id", d.ID, "title", title)

	cp := *d
	return &cp
}

// ApproveArchitectureDecision marks a ledger entry approved. Approving an
// already approved entry is a no-op.
func (p *Protocol) ApproveArchitectureDecision(decisionID string) error {
	p.ledgerMu.Lock()
	defer p.ledgerMu.Unlock()

	for _, d := range p.decisions {
		if d.ID != decisionID {
			continue
		}
		if d.Status == core.DecisionApproved {
			return nil
		}
		now := time.Now().UTC()
		d.Status = core.DecisionApproved
		d.ApprovedAt = &now
		return nil
	}
	return fmt.Errorf("architecture decision %q not found", decisionID)
}

// ArchitectureDecisions returns the ledger in proposal order. Entries are
// copies; mutating them does not affect the ledger.
func (p *Protocol) ArchitectureDecisions() []*core.ArchitectureDecision {
	p.ledgerMu.RLock()
	defer p.ledgerMu.RUnlock()

	out := make([]*core.ArchitectureDecision, len(p.decisions))
	for i, d := range p.decisions {
		cp := *d
		out[i] = &cp
	}
	return out
}
