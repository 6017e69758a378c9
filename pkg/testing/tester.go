package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// FrameDuration is how far Settle advances the fake clock per step.
const FrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("Settle timed out: scheduler did not go idle")

// Tester mounts components under a BuildOwner driven by a scheduler loop
// with a fake clock. Nothing runs unless the test calls Pump, Advance or
// Settle.
type Tester struct {
	owner       *core.BuildOwner
	loop        *scheduler.Loop
	clock       *FakeClock
	root        *core.StatefulElement
	recorder    *ErrorRecorder
	metrics     tally.TestScope
	prevLoop    *scheduler.Loop
	restoreErrs func()
}

// TesterOption configures a Tester.
type TesterOption func(*testerConfig)

type testerConfig struct {
	strict bool
	delay  time.Duration
}

// WithStrictMode enables the diagnostic mount cycle on every first mount.
func WithStrictMode() TesterOption {
	return func(c *testerConfig) { c.strict = true }
}

// WithDeferDelay sets the delay deferred lifecycle checks are scheduled
// with.
func WithDeferDelay(d time.Duration) TesterOption {
	return func(c *testerConfig) { c.delay = d }
}

// NewTester creates a tester. It becomes the scheduler default and installs
// its error recorder until Cleanup is called. Use NewTesterWithT instead
// where possible.
func NewTester(opts ...TesterOption) *Tester {
	var cfg testerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	clk := NewFakeClock()
	loop := scheduler.NewLoop(
		scheduler.WithClock(clk),
		scheduler.WithDeferDelay(cfg.delay),
	)
	metrics := tally.NewTestScope("", nil)

	owner := core.NewBuildOwner(loop)
	owner.StrictMode = cfg.strict
	owner.Metrics = metrics

	t := &Tester{
		owner:    owner,
		loop:     loop,
		clock:    clk,
		recorder: NewErrorRecorder(),
		metrics:  metrics,
	}
	t.prevLoop = scheduler.SetDefault(loop)
	t.restoreErrs = t.recorder.Install()
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, opts ...TesterOption) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts the tree, runs the checks that scheduled (waiting out
// the loop's defer delay on the fake clock) and restores the global
// scheduler and error handler.
func (t *Tester) Cleanup() {
	if t.root != nil {
		t.owner.Detach(t.root)
		t.root = nil
		t.Advance(t.loop.DeferDelay())
	}
	if t.restoreErrs != nil {
		t.restoreErrs()
		t.restoreErrs = nil
	}
	scheduler.SetDefault(t.prevLoop)
}

// Mount attaches component as the root, replacing (and genuinely
// unmounting) any previous root. Deferred checks are left pending.
func (t *Tester) Mount(component core.Component) *core.StatefulElement {
	if t.root != nil {
		t.owner.Detach(t.root)
	}
	t.root = t.owner.Attach(component)
	return t.root
}

// Unmount genuinely unmounts the root. Deferred checks are left pending.
func (t *Tester) Unmount() {
	if t.root == nil {
		return
	}
	t.owner.Detach(t.root)
	t.root = nil
}

// Remount runs a diagnostic unmount/mount cycle on the root.
func (t *Tester) Remount() {
	t.owner.Remount(t.root)
}

// Pump flushes pending builds and runs every task that is due at the
// current fake time. It returns the number of tasks run.
func (t *Tester) Pump() int {
	t.owner.FlushBuild()
	ran := t.loop.Flush()
	// Tasks may have called SetState.
	if t.owner.NeedsWork() {
		t.owner.FlushBuild()
	}
	return ran
}

// Advance moves the fake clock forward by d and pumps.
func (t *Tester) Advance(d time.Duration) int {
	t.clock.Advance(d)
	return t.Pump()
}

// Settle pumps, advancing the clock by FrameDuration between pumps, until
// no builds or tasks are pending or timeout of fake time has elapsed. A
// repeating task registered with Loop.Every never settles.
func (t *Tester) Settle(timeout time.Duration) error {
	var elapsed time.Duration
	for {
		t.Pump()
		if !t.needsWork() {
			return nil
		}
		if elapsed >= timeout {
			return ErrSettleTimeout
		}
		t.clock.Advance(FrameDuration)
		elapsed += FrameDuration
	}
}

func (t *Tester) needsWork() bool {
	return t.owner.NeedsWork() || t.loop.Pending() > 0
}

// Root returns the mounted root, or nil.
func (t *Tester) Root() *core.StatefulElement {
	return t.root
}

// Owner returns the build owner.
func (t *Tester) Owner() *core.BuildOwner {
	return t.owner
}

// Loop returns the scheduler loop.
func (t *Tester) Loop() *scheduler.Loop {
	return t.loop
}

// Clock returns the fake clock for advancing time in tests.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Errors returns the recorder installed for this tester.
func (t *Tester) Errors() *ErrorRecorder {
	return t.recorder
}

// Metrics returns the scope the owner and the hooks report to.
func (t *Tester) Metrics() tally.TestScope {
	return t.metrics
}

// Counter returns the current value of a counter in Metrics, or 0.
func (t *Tester) Counter(name string) int64 {
	c, ok := t.metrics.Snapshot().Counters()[name+"+"]
	if !ok {
		return 0
	}
	return c.Value()
}

// Find evaluates a finder against the current element tree.
func (t *Tester) Find(finder Finder) FinderResult {
	if t.root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		elements: finder.Evaluate(t.root),
		finder:   finder,
	}
}
