package approval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nxtg-ai/forge/core"
)

// DefaultTimeoutMinutes applies when a request does not set its own timeout.
const DefaultTimeoutMinutes = 60

// InMemoryService is a thread-safe in-memory core.ApprovalService. The zero
// value is not usable; construct with NewInMemoryService.
type InMemoryService struct {
	mu       sync.RWMutex
	requests map[string]*core.ApprovalRequest
	now      func() time.Time
}

var _ core.ApprovalService = (*InMemoryService)(nil)

// NewInMemoryService creates an empty in-memory approval service.
func NewInMemoryService() *InMemoryService {
	return &InMemoryService{
		requests: make(map[string]*core.ApprovalRequest),
		now:      time.Now,
	}
}

// RequestApproval opens a pending request with a generated id.
func (s *InMemoryService) RequestApproval(_ context.Context, subject string, impact core.Impact, risk string, opts core.ApprovalOptions) (*core.ApprovalRequest, error) {
	timeout := opts.TimeoutMinutes
	if timeout <= 0 {
		timeout = DefaultTimeoutMinutes
	}

	req := &core.ApprovalRequest{
		ID:               uuid.NewString(),
		Subject:          subject,
		Impact:           impact,
		Risk:             risk,
		RequiredApprover: opts.RequiredApprover,
		TimeoutMinutes:   timeout,
		Status:           core.ApprovalPending,
		CreatedAt:        s.now().UTC(),
	}

	s.mu.Lock()
	s.requests[req.ID] = req
	s.mu.Unlock()

	cp := *req
	return &cp, nil
}

// GetRequest returns the current state of a request. A pending request past
// its timeout is transitioned to TIMEOUT before being returned.
func (s *InMemoryService) GetRequest(_ context.Context, id string) (*core.ApprovalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("approval request %q not found", id)
	}

	if req.Status == core.ApprovalPending {
		expiry := req.CreatedAt.Add(time.Duration(req.TimeoutMinutes) * time.Minute)
		if s.now().After(expiry) {
			req.Status = core.ApprovalTimeout
		}
	}

	cp := *req
	return &cp, nil
}

// Approve records a positive decision on a pending request. When the
// request names a required approver the approver argument must match.
func (s *InMemoryService) Approve(id, approver, feedback string) error {
	return s.decide(id, approver, feedback, core.ApprovalApproved)
}

// Reject records a negative decision on a pending request; feedback should
// carry the rejection reason.
func (s *InMemoryService) Reject(id, approver, feedback string) error {
	return s.decide(id, approver, feedback, core.ApprovalRejected)
}

func (s *InMemoryService) decide(id, approver, feedback string, status core.ApprovalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("approval request %q not found", id)
	}
	if req.Status.Terminal() {
		return fmt.Errorf("approval request %q already %s", id, req.Status)
	}
	if req.RequiredApprover != "" && approver != req.RequiredApprover {
		return fmt.Errorf("approval request %q requires approver %q", id, req.RequiredApprover)
	}

	req.Status = status
	req.Approver = approver
	req.Feedback = feedback
	return nil
}

// Pending returns all requests still awaiting a decision, useful for
// frontends that surface an approval inbox.
func (s *InMemoryService) Pending() []*core.ApprovalRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.ApprovalRequest
	for _, req := range s.requests {
		if req.Status == core.ApprovalPending {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out
}
