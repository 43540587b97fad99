package core

import (
	"errors"
	"fmt"
	"strings"
)

// AgentNotFoundError reports an operation addressed to an unregistered
// agent id. It is always a hard, immediately-reported error and is never
// retried.
type AgentNotFoundError struct {
	AgentID string
}

// Error implements the error interface; the message always contains the
// offending agent id.
func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.AgentID)
}

// IsAgentNotFound reports whether err is (or wraps) an AgentNotFoundError.
func IsAgentNotFound(err error) bool {
	var anf *AgentNotFoundError
	return errors.As(err, &anf)
}

// CyclicDependencyError reports that a dependency graph is not a DAG.
// TaskIDs names the tasks participating in (or downstream of) the cycle.
type CyclicDependencyError struct {
	TaskIDs []string
}

// Error implements the error interface.
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected among tasks: %s", strings.Join(e.TaskIDs, ", "))
}
