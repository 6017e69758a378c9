package core

import (
	"fmt"
	"sync"

	"github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// stateBase is implemented by pointers to structs embedding StateBase, so
// hook functions can take the embedding state itself.
type stateBase interface {
	state() *StateBase
}

func (s *StateBase) state() *StateBase { return s }

// StateBase is embedded by State implementations. It supplies no-op
// InitState, Build and DidUpdateComponent methods, element bookkeeping,
// disposers and the hook lists the hook functions in this package register
// into.
//
//	type counterState struct {
//	    core.StateBase
//	    count *core.Managed[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.NewManaged(s, 0)
//	    core.UseTrueEffect(s, func() lifecycle.CleanupFunc { ... })
//	}
type StateBase struct {
	element     *StatefulElement
	disposers   []*disposer
	commitHooks []func()
	mountHooks  []func() func()
	teardowns   []func()
	disposed    bool
	mu          sync.Mutex
}

type disposer struct {
	fn func()
}

// SetElement is called by the element that owns the state before InitState.
func (s *StateBase) SetElement(element *StatefulElement) {
	s.element = element
}

// Element returns the owning element, or nil before the state is mounted.
func (s *StateBase) Element() *StatefulElement {
	return s.element
}

// SetState runs fn and marks the element for rebuild. It does nothing once
// the state is disposed.
//
// SetState must be called from the goroutine driving the owner's scheduler.
func (s *StateBase) SetState(fn func()) {
	if s.IsDisposed() {
		return
	}
	if fn != nil {
		fn()
	}
	if s.element != nil {
		s.element.MarkNeedsBuild()
	}
}

// OnDispose registers cleanup to run once when the state is disposed, after
// every disposer registered later. If the state is already disposed cleanup
// runs immediately. The returned function unregisters cleanup.
func (s *StateBase) OnDispose(cleanup func()) (unregister func()) {
	if cleanup == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		cleanup()
		return func() {}
	}
	d := &disposer{fn: cleanup}
	s.disposers = append(s.disposers, d)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		d.fn = nil
		s.mu.Unlock()
	}
}

// OnCommit registers a hook that runs after every commit: the first build
// and every rebuild.
func (s *StateBase) OnCommit(hook func()) {
	if hook == nil {
		return
	}
	s.commitHooks = append(s.commitHooks, hook)
}

// OnMount registers a hook that runs on every mount execution, diagnostic
// ones included. The function it returns, if any, runs on the paired
// unmount.
func (s *StateBase) OnMount(hook func() func()) {
	if hook == nil {
		return
	}
	s.mountHooks = append(s.mountHooks, hook)
}

// Scheduler returns the scheduler deferred lifecycle checks are posted to:
// the owner's if the state is mounted under one, the process default
// otherwise.
func (s *StateBase) Scheduler() lifecycle.Scheduler {
	if s.element != nil && s.element.owner != nil {
		return s.element.owner.Scheduler()
	}
	return scheduler.Default()
}

// RunDisposers runs the registered disposers, newest first, and marks the
// state disposed. Later calls do nothing.
func (s *StateBase) RunDisposers() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	disposers := s.disposers
	s.disposers = nil
	s.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		s.mu.Lock()
		fn := disposers[i].fn
		s.mu.Unlock()
		if fn != nil {
			s.contain("core.StateBase.dispose", errors.KindCleanup, fn)
		}
	}
}

// Dispose runs the disposers. States that override it must call
// s.StateBase.Dispose().
func (s *StateBase) Dispose() {
	s.RunDisposers()
}

// InitState does nothing. States override it to register hooks.
func (s *StateBase) InitState() {}

// Build is a no-op default implementation that returns no children.
func (s *StateBase) Build(ctx BuildContext) []Component {
	return nil
}

// DidUpdateComponent is a no-op default implementation.
func (s *StateBase) DidUpdateComponent(old Component) {}

// IsDisposed reports whether Dispose has run.
func (s *StateBase) IsDisposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (s *StateBase) runCommitHooks() {
	for _, hook := range s.commitHooks {
		s.contain("core.StateBase.commit", errors.KindCommit, hook)
	}
}

func (s *StateBase) runMountHooks() {
	for _, hook := range s.mountHooks {
		var teardown func()
		s.contain("core.StateBase.mount", errors.KindEffect, func() { teardown = hook() })
		s.teardowns = append(s.teardowns, teardown)
	}
}

func (s *StateBase) runUnmountHooks() {
	teardowns := s.teardowns
	s.teardowns = nil
	for i := len(teardowns) - 1; i >= 0; i-- {
		if teardowns[i] == nil {
			continue
		}
		s.contain("core.StateBase.unmount", errors.KindCleanup, teardowns[i])
	}
}

func (s *StateBase) contain(op string, kind errors.ErrorKind, fn func()) {
	errors.Contain(op, kind, s.componentName(), func() error {
		fn()
		return nil
	})
}

func (s *StateBase) componentName() string {
	if s.element == nil || s.element.component == nil {
		return ""
	}
	return fmt.Sprintf("%T", s.element.component)
}

func (s *StateBase) lifecycleOptions() []lifecycle.Option {
	opts := []lifecycle.Option{lifecycle.WithComponent(s.componentName())}
	if s.element != nil && s.element.owner != nil {
		opts = append(opts, lifecycle.WithMetrics(s.element.owner.metrics()))
	}
	return opts
}
