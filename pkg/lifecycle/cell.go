package lifecycle

import "sync"

// Cell holds the most recently committed value of T behind a stable pointer.
//
// Sync is meant to be called by the host once per commit in which the value
// changed. Read may be called from anywhere, including timers and goroutines
// started long before the latest commit, and returns the value passed to the
// most recent Sync (or the initial value). Reading never triggers a rebuild.
type Cell[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Sync stores value as the latest committed value.
func (c *Cell[T]) Sync(value T) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Read returns the latest committed value.
func (c *Cell[T]) Read() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}
