package protocol

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nxtg-ai/forge/core"
)

// approverForRole maps a reviewer role to the approver tag the approval
// service filters on. Unknown roles pass through unchanged so custom
// approver tags keep working.
func approverForRole(role string) string {
	switch strings.ToLower(role) {
	case "architect", "architecture":
		return "lead-architect"
	case "backend":
		return "backend-master"
	case "qa", "quality":
		return "qa-sentinel"
	case "platform":
		return "platform-builder"
	case "integration":
		return "integration-specialist"
	case "cli":
		return "cli-artisan"
	default:
		return role
	}
}

// RequestSignOff opens an approval request for the artifact with the
// approval service and polls it until the request reaches a terminal
// status. APPROVED yields an approved sign-off; REJECTED an unapproved one
// carrying the approver's feedback; TIMEOUT (or the local deadline firing
// first) an unapproved one whose comment says the request timed out.
//
// The caller's context cancels the poll; polling frequency is configured
// via WithSignOffPollInterval.
func (p *Protocol) RequestSignOff(ctx context.Context, approverRole, artifact string) (*core.SignOff, error) {
	if p.approvals == nil {
		return nil, fmt.Errorf("no approval service configured")
	}

	opts := core.ApprovalOptions{
		RequiredApprover: approverForRole(approverRole),
		TimeoutMinutes:   p.opts.SignOffTimeoutMinutes,
	}

	req, err := p.approvals.RequestApproval(ctx,
		fmt.Sprintf("Sign-off requested for %s", artifact), core.ImpactMedium, "", opts)
	if err != nil {
		return nil, fmt.Errorf("requesting approval: %w", err)
	}

	p.logger.Info("sign-off requested",
		"request_id", req.ID, "artifact", artifact, "approver", opts.RequiredApprover)

	timeout := time.Duration(req.TimeoutMinutes) * time.Minute
	if timeout <= 0 {
		timeout = time.Duration(p.opts.SignOffTimeoutMinutes) * time.Minute
	}
	deadline := time.Now().Add(timeout)

	ticker := time.NewTicker(p.opts.SignOffPollInterval)
	defer ticker.Stop()

	for {
		cur, err := p.approvals.GetRequest(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("polling approval %s: %w", req.ID, err)
		}

		switch cur.Status {
		case core.ApprovalApproved:
			return &core.SignOff{Approved: true, Comments: cur.Feedback}, nil
		case core.ApprovalRejected:
			return &core.SignOff{Approved: false, Comments: cur.Feedback}, nil
		case core.ApprovalTimeout:
			return &core.SignOff{Approved: false, Comments: timeoutComment(artifact, cur.Feedback)}, nil
		}

		if time.Now().After(deadline) {
			return &core.SignOff{Approved: false, Comments: timeoutComment(artifact, "")}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// timeoutComment always names the timeout so callers matching on "timed
// out" work regardless of whether the approval service attached feedback.
func timeoutComment(artifact, feedback string) string {
	comment := fmt.Sprintf("Sign-off request for %s timed out", artifact)
	if feedback != "" {
		comment = fmt.Sprintf("%s: %s", comment, feedback)
	}
	return comment
}
