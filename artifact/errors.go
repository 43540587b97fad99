package artifact

import "errors"

// ErrNotFound is returned when no artifact exists for the given task id and
// name pair in the underlying store.
var ErrNotFound = errors.New("artifact not found")
