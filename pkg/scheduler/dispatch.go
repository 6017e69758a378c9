package scheduler

import "sync"

var (
	defaultMu   sync.RWMutex
	defaultLoop = NewLoop()
)

// SetDefault replaces the process-wide loop used by states that are not
// attached to a BuildOwner. Pass nil to install a fresh loop. It returns the
// previous loop.
func SetDefault(l *Loop) *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultLoop
	if l == nil {
		l = NewLoop()
	}
	defaultLoop = l
	return prev
}

// Default returns the process-wide loop.
func Default() *Loop {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLoop
}

// Dispatch schedules callback on the default loop and is safe to call from
// any goroutine. It returns false if callback is nil.
func Dispatch(callback func()) bool {
	if callback == nil {
		return false
	}
	Default().Schedule(callback)
	return true
}
