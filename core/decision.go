package core

import (
	"time"

	"github.com/google/uuid"
)

// Impact grades how far-reaching a decision is.
type Impact string

const (
	// ImpactLow marks decisions with local, reversible consequences.
	ImpactLow Impact = "low"
	// ImpactMedium marks decisions affecting more than one component.
	ImpactMedium Impact = "medium"
	// ImpactHigh marks decisions that always escalate for review.
	ImpactHigh Impact = "high"
)

// Decision is a transient input to escalation logic. It is not persisted by
// the coordination core.
type Decision struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Impact      Impact `json:"impact"`
	Rationale   string `json:"rationale,omitempty"`
}

// ArchitectureDecisionStatus tracks a ledger entry's lifecycle.
type ArchitectureDecisionStatus string

const (
	// DecisionProposed is the initial ledger status.
	DecisionProposed ArchitectureDecisionStatus = "proposed"
	// DecisionApproved marks a ledger entry accepted for implementation.
	DecisionApproved ArchitectureDecisionStatus = "approved"
)

// ArchitectureDecision is an entry in the protocol's decision ledger.
type ArchitectureDecision struct {
	ID          string                     `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Status      ArchitectureDecisionStatus `json:"status"`
	ProposedAt  time.Time                  `json:"proposed_at"`
	ApprovedAt  *time.Time                 `json:"approved_at,omitempty"`
}

// NewArchitectureDecision creates a proposed ledger entry with a generated id.
func NewArchitectureDecision(title, description string) *ArchitectureDecision {
	return &ArchitectureDecision{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      DecisionProposed,
		ProposedAt:  time.Now().UTC(),
	}
}
