package timeout

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager manages timeout configuration
type Manager struct {
	global    time.Duration
	operation map[string]time.Duration
	mu        sync.RWMutex
}

// NewManager creates a new timeout manager
func NewManager(globalTimeout time.Duration) *Manager {
	return &Manager{
		global:    globalTimeout,
		operation: make(map[string]time.Duration),
	}
}

// SetOperationTimeout sets timeout for specific operation
func (m *Manager) SetOperationTimeout(operation string, timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operation[operation] = timeout
}

// GetTimeout returns the timeout for operation, never exceeding the time
// left on ctx's own deadline.
func (m *Manager) GetTimeout(ctx context.Context, operation string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timeout := m.global
	if opTimeout, exists := m.operation[operation]; exists {
		timeout = opTimeout
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}

// Run executes handler under the operation's deadline. When the local
// deadline fires while the parent context is still alive, a *TimeoutError
// is returned instead of the raw context error.
func (m *Manager) Run(ctx context.Context, operation string, handler func(context.Context) error) error {
	limit := m.GetTimeout(ctx, operation)
	timeoutCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	err := handler(timeoutCtx)
	if err != nil && ctx.Err() == nil && timeoutCtx.Err() == context.DeadlineExceeded {
		return &TimeoutError{Operation: operation, Timeout: limit}
	}
	return err
}

// TimeoutError represents a timeout error
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

// Error implements error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out after %v", e.Operation, e.Timeout)
}

// IsTimeout checks if error is a timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*TimeoutError); ok {
		return true
	}
	return err == context.DeadlineExceeded
}
