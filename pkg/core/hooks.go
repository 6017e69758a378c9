package core

import "github.com/go-drift/lifecycle/pkg/lifecycle"

// UseController creates a controller and registers it for automatic disposal.
// The controller will be disposed when the state is disposed.
//
// Example:
//
//	func (s *myState) InitState() {
//	    s.conn = core.UseController(s, func() *Connection {
//	        return NewConnection(addr)
//	    })
//	}
func UseController[C Disposable](s stateBase, create func() C) C {
	base := s.state()
	controller := create()
	base.OnDispose(func() {
		controller.Dispose()
	})
	return controller
}

// UseEffect runs effect on every mount execution and its cleanup on every
// unmount, diagnostic ones included. Prefer UseTrueEffect for work that must
// not be duplicated.
func UseEffect(s stateBase, effect lifecycle.EffectFunc) {
	if effect == nil {
		return
	}
	s.state().OnMount(func() func() {
		return effect()
	})
}

// UseSyncedRef returns a cell that always holds the value source returned at
// the latest commit. The cell is stable for the life of the state, so
// timers and listeners registered once can read it instead of capturing a
// value.
//
// Example:
//
//	func (s *formState) InitState() {
//	    s.form = core.NewManaged(s, FormData{})
//	    latest := core.UseSyncedRef(s, s.form.Value)
//	    core.UseTrueEffect(s, func() lifecycle.CleanupFunc {
//	        return s.Scheduler().(*scheduler.Loop).Every(5*time.Second, func() {
//	            save(latest.Read())
//	        })
//	    })
//	}
func UseSyncedRef[T any](s stateBase, source func() T) *lifecycle.Cell[T] {
	base := s.state()
	cell := lifecycle.NewCell(source())
	base.OnCommit(func() {
		cell.Sync(source())
	})
	return cell
}

// OnTrueUnmount runs action once the state is genuinely unmounted. Unmounts
// that are immediately followed by a remount are ignored. Call it once, from
// InitState.
func OnTrueUnmount(s stateBase, action func()) *lifecycle.UnmountCallback {
	return OnTrueUnmountE(s, lifecycle.UnmountAction(action))
}

// OnTrueUnmountE is OnTrueUnmount for actions that can fail. A returned
// error is reported through the errors package.
func OnTrueUnmountE(s stateBase, action lifecycle.UnmountFunc) *lifecycle.UnmountCallback {
	base := s.state()
	cb := lifecycle.NewUnmountCallback(base.Scheduler(), action, base.lifecycleOptions()...)
	base.OnMount(func() func() {
		cb.Mount()
		return cb.Unmount
	})
	return cb
}

// UseTrueEffect runs effect once per genuine mount and its cleanup once per
// genuine unmount, surviving any number of diagnostic remounts. Both are
// deferred to the owner's scheduler. Call it once, from InitState.
func UseTrueEffect(s stateBase, effect lifecycle.EffectFunc) *lifecycle.Effect {
	base := s.state()
	e := lifecycle.NewEffect(base.Scheduler(), effect, base.lifecycleOptions()...)
	base.OnMount(func() func() {
		e.Mount()
		return e.Unmount
	})
	return e
}

// Managed holds a value and triggers rebuilds when it changes.
// Unlike a synced ref, it is meant to be read during Build.
//
// Managed is NOT thread-safe. To update from a background goroutine, use
// scheduler.Dispatch or the owner's scheduler.
type Managed[T any] struct {
	base  *StateBase
	value T
}

// NewManaged creates a new managed state value.
// Changes to this value will automatically trigger a rebuild.
func NewManaged[T any](s stateBase, initial T) *Managed[T] {
	return &Managed[T]{
		base:  s.state(),
		value: initial,
	}
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set updates the value and triggers a rebuild.
func (m *Managed[T]) Set(value T) {
	m.value = value
	m.base.SetState(nil)
}

// Update applies a transformation to the current value and triggers a rebuild.
func (m *Managed[T]) Update(transform func(T) T) {
	m.value = transform(m.value)
	m.base.SetState(nil)
}
