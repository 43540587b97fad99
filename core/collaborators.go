package core

import (
	"context"
	"time"
)

// ApprovalStatus is the lifecycle of a request held by the approval service.
type ApprovalStatus string

const (
	// ApprovalPending means the request awaits an approver.
	ApprovalPending ApprovalStatus = "PENDING"
	// ApprovalApproved is the positive terminal status.
	ApprovalApproved ApprovalStatus = "APPROVED"
	// ApprovalRejected is the negative terminal status; Feedback carries
	// the rejection reason.
	ApprovalRejected ApprovalStatus = "REJECTED"
	// ApprovalTimeout means the request expired before a decision.
	ApprovalTimeout ApprovalStatus = "TIMEOUT"
)

// Terminal reports whether the status will no longer change.
func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalApproved || s == ApprovalRejected || s == ApprovalTimeout
}

// ApprovalRequest is the approval service's view of one pending sign-off.
type ApprovalRequest struct {
	ID               string         `json:"id"`
	Subject          string         `json:"subject"`
	Impact           Impact         `json:"impact"`
	Risk             string         `json:"risk,omitempty"`
	RequiredApprover string         `json:"required_approver,omitempty"`
	TimeoutMinutes   int            `json:"timeout_minutes"`
	Status           ApprovalStatus `json:"status"`
	Approver         string         `json:"approver,omitempty"`
	Feedback         string         `json:"feedback,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// ApprovalOptions narrows who may approve a request and how long it stays
// open.
type ApprovalOptions struct {
	RequiredApprover string
	TimeoutMinutes   int
}

// ApprovalService is the external approval collaborator consumed by the
// protocol's sign-off flow. Implementations own request state; the protocol
// only ever polls.
type ApprovalService interface {
	// RequestApproval opens a pending request and returns it with a
	// generated id and status PENDING.
	RequestApproval(ctx context.Context, subject string, impact Impact, risk string, opts ApprovalOptions) (*ApprovalRequest, error)

	// GetRequest returns the current state of a request by id.
	GetRequest(ctx context.Context, id string) (*ApprovalRequest, error)
}

// AlignmentReport is the outcome of checking one decision against project
// vision and constraints. Score is normalized to [0,1].
type AlignmentReport struct {
	Aligned     bool     `json:"aligned"`
	Score       float64  `json:"score"`
	Violations  []string `json:"violations,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// AlignmentChecker is the external collaborator consulted by escalation
// policy.
type AlignmentChecker interface {
	CheckAlignment(ctx context.Context, decision Decision) (*AlignmentReport, error)
}

// ArtifactStore persists artifact payloads produced by task execution,
// keyed by task id and artifact name.
type ArtifactStore interface {
	Save(taskID, name string, data []byte) error
	Get(taskID, name string) ([]byte, error)
	List(taskID string) ([]string, error)
	Delete(taskID, name string) error
}
