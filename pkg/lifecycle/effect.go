package lifecycle

import "github.com/go-drift/lifecycle/pkg/errors"

// CleanupFunc undoes the work of an effect. A nil CleanupFunc means there is
// nothing to undo.
type CleanupFunc func()

// EffectFunc performs setup and optionally returns its cleanup.
type EffectFunc func() CleanupFunc

// EffectState is the lifecycle position of an Effect.
type EffectState int

const (
	// EffectUninitialized means Mount has never been called.
	EffectUninitialized EffectState = iota
	// EffectSetupPending means a mount is waiting for its deferred check.
	EffectSetupPending
	// EffectActive means setup has run for a genuine mount.
	EffectActive
	// EffectTeardownPending means an unmount is waiting for its deferred check.
	EffectTeardownPending
	// EffectFinalized means the genuine unmount has been processed.
	EffectFinalized
)

func (s EffectState) String() string {
	switch s {
	case EffectUninitialized:
		return "uninitialized"
	case EffectSetupPending:
		return "setup-pending"
	case EffectActive:
		return "active"
	case EffectTeardownPending:
		return "teardown-pending"
	case EffectFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Effect runs a setup action once per genuine mount and its cleanup once per
// genuine unmount. Both are deferred past the synchronous phase; a mount or
// unmount that has been superseded by then is discarded without running
// anything.
//
// If an active effect goes through a diagnostic unmount/remount, the pending
// teardown is discarded and the surviving mount keeps the existing setup
// rather than running it a second time.
type Effect struct {
	sched   Scheduler
	tracker Tracker
	effect  *Cell[EffectFunc]
	cleanup CleanupFunc
	// live is set once setup has run and cleared once its cleanup has run.
	// A mount that finds the effect live re-adopts it instead of running
	// setup again, so a diagnostic remount of an active effect does not
	// re-run setup once its check passes.
	live  bool
	state EffectState
	opts  options
}

// NewEffect creates an effect for one component instance. The host must call
// Mount on every mount execution and Unmount on every unmount.
func NewEffect(s Scheduler, effect EffectFunc, opts ...Option) *Effect {
	return &Effect{
		sched:  s,
		effect: NewCell(effect),
		opts:   buildOptions(opts),
	}
}

// Update replaces the setup action. The action that is current when the
// deferred setup check runs is the one invoked.
func (e *Effect) Update(effect EffectFunc) {
	e.effect.Sync(effect)
}

// State returns the lifecycle position of the most recent mount.
func (e *Effect) State() EffectState {
	return e.state
}

// Generation returns the number of mount executions seen so far.
func (e *Effect) Generation() uint64 {
	return e.tracker.Generation()
}

// Mount records a mount execution and schedules its setup check.
func (e *Effect) Mount() {
	snap := e.tracker.OnMount()
	e.state = EffectSetupPending
	deferredCheck{
		tracker:   &e.tracker,
		snap:      snap,
		op:        "lifecycle.Effect.setup",
		kind:      errors.KindEffect,
		onCurrent: e.setup,
		opts:      e.opts,
	}.schedule(e.sched)
}

// Unmount schedules the teardown check for the current generation.
// Calling Unmount before any Mount, or after finalization, does nothing.
func (e *Effect) Unmount() {
	if e.state == EffectUninitialized || e.state == EffectFinalized {
		return
	}
	e.state = EffectTeardownPending
	deferredCheck{
		tracker:   &e.tracker,
		snap:      e.tracker.Current(),
		op:        "lifecycle.Effect.cleanup",
		kind:      errors.KindCleanup,
		onCurrent: e.teardown,
		opts:      e.opts,
	}.schedule(e.sched)
}

func (e *Effect) setup() error {
	if e.state == EffectSetupPending {
		e.state = EffectActive
	}
	if e.live {
		return nil
	}
	e.live = true
	e.cleanup = nil
	fn := e.effect.Read()
	if fn == nil {
		return nil
	}
	e.opts.metrics.Counter(MetricEffectSetups).Inc(1)
	e.cleanup = fn()
	return nil
}

func (e *Effect) teardown() error {
	e.state = EffectFinalized
	if !e.live {
		return nil
	}
	e.live = false
	cleanup := e.cleanup
	e.cleanup = nil
	if cleanup == nil {
		return nil
	}
	e.opts.metrics.Counter(MetricEffectCleanups).Inc(1)
	cleanup()
	return nil
}
