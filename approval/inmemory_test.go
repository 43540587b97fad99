package approval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
)

func TestRequestApprovalDefaults(t *testing.T) {
	svc := NewInMemoryService()

	req, err := svc.RequestApproval(context.Background(), "deploy auth service", core.ImpactHigh, "downtime risk", core.ApprovalOptions{})

	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, core.ApprovalPending, req.Status)
	assert.Equal(t, DefaultTimeoutMinutes, req.TimeoutMinutes)
	assert.Equal(t, "deploy auth service", req.Subject)
	assert.Equal(t, core.ImpactHigh, req.Impact)
}

func TestApproveAndReject(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	req, err := svc.RequestApproval(ctx, "schema change", core.ImpactMedium, "", core.ApprovalOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.Approve(req.ID, "lead-architect", "ship it"))

	got, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalApproved, got.Status)
	assert.Equal(t, "lead-architect", got.Approver)
	assert.Equal(t, "ship it", got.Feedback)

	// Terminal requests cannot be decided again.
	assert.Error(t, svc.Reject(req.ID, "lead-architect", "changed my mind"))

	second, err := svc.RequestApproval(ctx, "drop table", core.ImpactHigh, "", core.ApprovalOptions{})
	require.NoError(t, err)
	require.NoError(t, svc.Reject(second.ID, "qa-sentinel", "too risky"))

	got, err = svc.GetRequest(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalRejected, got.Status)
	assert.Equal(t, "too risky", got.Feedback)
}

func TestRequiredApproverEnforced(t *testing.T) {
	svc := NewInMemoryService()

	req, err := svc.RequestApproval(context.Background(), "release", core.ImpactMedium, "", core.ApprovalOptions{RequiredApprover: "qa-sentinel"})
	require.NoError(t, err)

	err = svc.Approve(req.ID, "random-passerby", "lgtm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qa-sentinel")

	require.NoError(t, svc.Approve(req.ID, "qa-sentinel", "verified"))
}

func TestPendingTimesOutLazily(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	req, err := svc.RequestApproval(ctx, "stale request", core.ImpactLow, "", core.ApprovalOptions{TimeoutMinutes: 5})
	require.NoError(t, err)

	// Shift the clock past the deadline.
	svc.now = func() time.Time { return time.Now().Add(10 * time.Minute) }

	got, err := svc.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, core.ApprovalTimeout, got.Status)

	// Timed out requests reject late decisions.
	assert.Error(t, svc.Approve(req.ID, "anyone", "too late"))
}

func TestGetRequestUnknownID(t *testing.T) {
	svc := NewInMemoryService()

	_, err := svc.GetRequest(context.Background(), "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestPendingListsOnlyUndecided(t *testing.T) {
	svc := NewInMemoryService()
	ctx := context.Background()

	first, err := svc.RequestApproval(ctx, "one", core.ImpactLow, "", core.ApprovalOptions{})
	require.NoError(t, err)
	_, err = svc.RequestApproval(ctx, "two", core.ImpactLow, "", core.ApprovalOptions{})
	require.NoError(t, err)

	require.NoError(t, svc.Approve(first.ID, "anyone", ""))

	pending := svc.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "two", pending[0].Subject)
}
