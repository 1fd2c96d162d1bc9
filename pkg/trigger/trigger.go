// Package trigger delivers one-way invocations between pipeline stages.
//
// A Trigger only enqueues: Fire returns once the invocation has been handed
// to the substrate and never reports the outcome of the handler that
// eventually runs. Substrates may deliver more than once, so handlers must be
// idempotent.
package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Invocation names a target handler and carries its routing payload.
type Invocation struct {
	Target  string          `json:"target"`
	Payload json.RawMessage `json:"payload"`
}

// NewInvocation marshals payload into an Invocation for target.
func NewInvocation(target string, payload any) (Invocation, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Invocation{}, fmt.Errorf("marshal %s payload: %w", target, err)
	}
	return Invocation{Target: target, Payload: data}, nil
}

// Handler runs an invocation's payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Trigger enqueues invocations for asynchronous execution.
type Trigger interface {
	Fire(ctx context.Context, inv Invocation) error
}

// Func adapts a function to the Trigger interface.
type Func func(ctx context.Context, inv Invocation) error

func (f Func) Fire(ctx context.Context, inv Invocation) error {
	return f(ctx, inv)
}

// Registry maps target names to handlers. It is shared by every trigger
// implementation that executes in-process.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds h to target, replacing any previous binding.
func (r *Registry) Register(target string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[target] = h
}

// Has reports whether target has a handler.
func (r *Registry) Has(target string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[target]
	return ok
}

// Targets lists registered target names in sorted order.
func (r *Registry) Targets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for inv.Target synchronously.
func (r *Registry) Dispatch(ctx context.Context, inv Invocation) error {
	r.mu.RLock()
	h, ok := r.handlers[inv.Target]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, inv.Target)
	}
	return h(ctx, inv.Payload)
}

// Sync returns a Trigger that dispatches inline. Used by tests and the CLI.
func Sync(r *Registry) Trigger {
	return Func(r.Dispatch)
}
