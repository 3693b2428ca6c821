package crawler

import (
	"errors"
	"fmt"
)

// ErrFetchTimeout indicates the page did not become ready within the fetch budget.
var ErrFetchTimeout = errors.New("fetch timed out")

// TaskPanicError wraps a panic recovered at the task boundary.
type TaskPanicError struct {
	Value any
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}
