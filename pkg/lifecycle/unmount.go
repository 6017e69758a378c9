package lifecycle

import (
	"context"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// UnmountFunc is an action run on a genuine unmount. A returned error is
// reported, not propagated.
type UnmountFunc func() error

// UnmountAction adapts a plain function to an UnmountFunc.
func UnmountAction(fn func()) UnmountFunc {
	if fn == nil {
		return nil
	}
	return func() error {
		fn()
		return nil
	}
}

// Async returns an UnmountFunc that starts fn on its own goroutine and
// returns immediately. A failure of fn is reported like any other unmount
// failure.
func Async(ctx context.Context, fn func(context.Context) error) UnmountFunc {
	if fn == nil {
		return nil
	}
	return func() error {
		go errors.Contain("lifecycle.Async", errors.KindUnmount, "", func() error {
			return fn(ctx)
		})
		return nil
	}
}

// UnmountCallback runs an action only when its component is genuinely
// unmounted. An unmount that is followed by a remount before the deferred
// check runs is treated as diagnostic and ignored.
type UnmountCallback struct {
	sched   Scheduler
	tracker Tracker
	action  *Cell[UnmountFunc]
	snap    Snapshot
	mounted bool
	opts    options
}

// NewUnmountCallback creates a callback for one component instance. The host
// must call Mount on every mount execution and Unmount on every unmount.
func NewUnmountCallback(s Scheduler, action UnmountFunc, opts ...Option) *UnmountCallback {
	return &UnmountCallback{
		sched:  s,
		action: NewCell(action),
		opts:   buildOptions(opts),
	}
}

// Update replaces the action. The action that is current when the deferred
// check runs is the one invoked.
func (u *UnmountCallback) Update(action UnmountFunc) {
	u.action.Sync(action)
}

// Mount records a mount execution.
func (u *UnmountCallback) Mount() {
	u.snap = u.tracker.OnMount()
	u.mounted = true
}

// Unmount schedules the deferred check for the mount recorded last.
// Calling Unmount without a preceding Mount does nothing.
func (u *UnmountCallback) Unmount() {
	if !u.mounted {
		return
	}
	u.mounted = false
	deferredCheck{
		tracker:   &u.tracker,
		snap:      u.snap,
		op:        "lifecycle.UnmountCallback.run",
		kind:      errors.KindUnmount,
		onCurrent: u.run,
		opts:      u.opts,
	}.schedule(u.sched)
}

// Generation returns the number of mount executions seen so far.
func (u *UnmountCallback) Generation() uint64 {
	return u.tracker.Generation()
}

func (u *UnmountCallback) run() error {
	action := u.action.Read()
	if action == nil {
		return nil
	}
	u.opts.metrics.Counter(MetricUnmountActions).Inc(1)
	return action()
}
