// Package gateway is the single call surface to the remote backend.
// Every remote operation is invoked by name with a payload and answers with
// a normalized Response; transport details stay behind registered Handlers.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/timeout"
)

// Response is the normalized result of a remote operation
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Gateway is the uniform call surface used by the orchestrator
type Gateway interface {
	Call(ctx context.Context, operation string, payload any) (*Response, error)
}

// Handler executes one remote operation
type Handler func(ctx context.Context, operation string, payload any) (*Response, error)

// Dispatcher routes operations to registered handlers under per-operation deadlines
type Dispatcher struct {
	handlers map[string]Handler
	timeouts *timeout.Manager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewDispatcher creates a dispatcher. A nil timeout manager disables deadlines.
func NewDispatcher(timeouts *timeout.Manager, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[string]Handler),
		timeouts: timeouts,
		logger:   logger,
	}
}

// Register registers the handler for an operation
func (d *Dispatcher) Register(operation string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[operation] = handler
}

// ListOperations returns the registered operation names in sorted order
func (d *Dispatcher) ListOperations() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

func (d *Dispatcher) handler(operation string) Handler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.handlers[operation]
}

// Call executes an operation by name. A response with success=false is
// returned as an error so callers can classify it uniformly.
func (d *Dispatcher) Call(ctx context.Context, operation string, payload any) (*Response, error) {
	h := d.handler(operation)
	if h == nil {
		return nil, errors.NewWithCode(errors.KindPermissionDenied, errors.CodeInvalidArgument,
			fmt.Sprintf("invalid-argument: unknown operation %s", operation))
	}

	start := time.Now()
	var resp *Response
	run := func(callCtx context.Context) error {
		var err error
		resp, err = h(callCtx, operation, payload)
		return err
	}

	var err error
	if d.timeouts != nil {
		err = d.timeouts.Run(ctx, operation, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		d.logger.Debug("remote operation failed",
			zap.String("operation", operation),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		if timeout.IsTimeout(err) && ctx.Err() == nil {
			return nil, errors.Wrap(err, errors.KindTimeout)
		}
		return nil, err
	}

	if err := Check(operation, resp); err != nil {
		return nil, err
	}

	d.logger.Debug("remote operation succeeded",
		zap.String("operation", operation),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}

// Check converts an unsuccessful response into an error
func Check(operation string, resp *Response) error {
	if resp == nil {
		return fmt.Errorf("%s failed: empty response", operation)
	}
	if !resp.Success {
		if resp.Error != "" {
			return fmt.Errorf("%s", resp.Error)
		}
		return fmt.Errorf("%s failed", operation)
	}
	return nil
}

// NewDefaultTimeouts builds a timeout manager seeded with OperationTimeouts
func NewDefaultTimeouts(global, ai time.Duration) *timeout.Manager {
	m := timeout.NewManager(global)
	for op, d := range OperationTimeouts {
		switch {
		case IsAIOperation(op) && ai > 0:
			m.SetOperationTimeout(op, ai)
		case !IsAIOperation(op) && global > 0 && op != OpSaveItinerary:
			m.SetOperationTimeout(op, global)
		default:
			m.SetOperationTimeout(op, d)
		}
	}
	return m
}
