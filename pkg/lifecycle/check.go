package lifecycle

import (
	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// Scheduler defers a task past the current synchronous phase. The task must
// run on the same goroutine that drives Mount and Unmount, and never before
// the call that scheduled it has returned.
type Scheduler interface {
	Schedule(task func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(task func())

// Schedule calls f(task).
func (f SchedulerFunc) Schedule(task func()) { f(task) }

// Metric names emitted on the scope passed to WithMetrics.
const (
	MetricEffectSetups    = "effect_setups"
	MetricEffectCleanups  = "effect_cleanups"
	MetricUnmountActions  = "unmount_actions"
	MetricDiscardedChecks = "discarded_checks"
	MetricContainedErrors = "contained_errors"
)

// Option configures an Effect or UnmountCallback.
type Option func(*options)

type options struct {
	component string
	metrics   tally.Scope
}

func buildOptions(opts []Option) options {
	o := options{metrics: tally.NoopScope}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithComponent names the owning component in error reports.
func WithComponent(name string) Option {
	return func(o *options) { o.component = name }
}

// WithMetrics counts executed, discarded and failed checks on scope.
func WithMetrics(scope tally.Scope) Option {
	return func(o *options) {
		if scope != nil {
			o.metrics = scope
		}
	}
}

// RunIfCurrent schedules fn to run once the synchronous phase is over, but
// only if t is still at snap by then. Failures inside fn are reported with
// the given kind and never propagate.
func RunIfCurrent(s Scheduler, t *Tracker, snap Snapshot, kind errors.ErrorKind, fn func() error) {
	deferredCheck{
		tracker:   t,
		snap:      snap,
		op:        "lifecycle." + kind.String(),
		kind:      kind,
		onCurrent: fn,
		opts:      buildOptions(nil),
	}.schedule(s)
}

// deferredCheck is one scheduled currency check. It runs onCurrent at most
// once, and only if the tracker has not advanced past snap.
type deferredCheck struct {
	tracker   *Tracker
	snap      Snapshot
	op        string
	kind      errors.ErrorKind
	onCurrent func() error
	opts      options
}

func (c deferredCheck) schedule(s Scheduler) {
	s.Schedule(c.fire)
}

func (c deferredCheck) fire() {
	if !c.tracker.IsCurrent(c.snap) {
		c.opts.metrics.Counter(MetricDiscardedChecks).Inc(1)
		return
	}
	if !errors.Contain(c.op, c.kind, c.opts.component, c.onCurrent) {
		c.opts.metrics.Counter(MetricContainedErrors).Inc(1)
	}
}
