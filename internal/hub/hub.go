// Package hub is a named-function registry: the dispatch point that
// maps operation names onto the audit trail for the command and HTTP
// surfaces.
package hub

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clognichain/clogni/internal/payload"
)

// Func is a registered operation. Args arrive as a payload object; the
// result must be canonically serializable.
type Func func(ctx context.Context, args payload.Object) (payload.Value, error)

// Result carries a call's outcome plus a correlation ID.
type Result struct {
	ID    string // unique per call, for response correlation
	Value payload.Value
}

// UnknownFunctionError reports a call to a name that was never
// registered.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("function %q not registered", e.Name)
}

// Hub holds the function table. Safe for concurrent use.
type Hub struct {
	mu  sync.RWMutex
	fns map[string]Func
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{fns: make(map[string]Func)}
}

// Register binds a function to a name, replacing any previous binding.
func (h *Hub) Register(name string, fn Func) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns[name] = fn
}

// Call dispatches to the named function. Unknown names fail with
// *UnknownFunctionError; function errors propagate unchanged.
func (h *Hub) Call(ctx context.Context, name string, args payload.Object) (Result, error) {
	h.mu.RLock()
	fn, ok := h.fns[name]
	h.mu.RUnlock()

	if !ok {
		return Result{}, &UnknownFunctionError{Name: name}
	}

	id := uuid.NewString()
	value, err := fn(ctx, args)
	if err != nil {
		return Result{ID: id}, err
	}
	return Result{ID: id, Value: value}, nil
}

// List returns the registered names, sorted.
func (h *Hub) List() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.fns))
	for name := range h.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
