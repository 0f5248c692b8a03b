package crud

import "sync"

// Gate defers a caller-supplied action until explicit user confirmation.
// It has two states: closed (no pending item) and open (exactly one pending
// item awaiting confirmation). The bound action runs at most once per
// Request, and only on Confirm; Cancel discards the pending item silently.
//
// Each gate owner embeds its own instance; gates are never shared between
// components.
type Gate[T any] struct {
	mu      sync.Mutex
	open    bool
	pending T
	action  func(T)
}

// NewGate binds action to a new, closed gate. A nil action makes Confirm a
// state transition with no effect beyond closing the gate.
func NewGate[T any](action func(T)) *Gate[T] {
	return &Gate[T]{action: action}
}

// Request opens the gate with item as the pending confirmation target,
// replacing any previously pending item.
func (g *Gate[T]) Request(item T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.pending = item
}

// Confirm closes the gate and invokes the bound action with the pending
// item. Confirming a closed gate does nothing.
func (g *Gate[T]) Confirm() {
	g.mu.Lock()
	if !g.open {
		g.mu.Unlock()
		return
	}
	item := g.pending
	g.clearLocked()
	action := g.action
	g.mu.Unlock()

	// Invoked outside the lock so the action may re-open the gate.
	if action != nil {
		action(item)
	}
}

// Cancel closes the gate and discards the pending item without invoking the
// action.
func (g *Gate[T]) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
}

// IsOpen reports whether a confirmation is pending.
func (g *Gate[T]) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Pending returns the item awaiting confirmation, if any.
func (g *Gate[T]) Pending() (T, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending, g.open
}

func (g *Gate[T]) clearLocked() {
	var zero T
	g.open = false
	g.pending = zero
}
