package testing

import (
	"testing"
	"time"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

func TestNewTester_Defaults(t *testing.T) {
	tester := NewTesterWithT(t)

	if tester.Owner() == nil || tester.Loop() == nil {
		t.Fatal("expected owner and loop to be set")
	}
	if tester.Owner().StrictMode {
		t.Error("strict mode should be off by default")
	}
	if tester.Loop().DeferDelay() != 0 {
		t.Errorf("expected zero defer delay, got %v", tester.Loop().DeferDelay())
	}
	if scheduler.Default() != tester.Loop() {
		t.Error("expected tester loop to be the scheduler default")
	}
	if errors.CurrentHandler() != errors.ErrorHandler(tester.Errors()) {
		t.Error("expected tester recorder to be installed")
	}
}

func TestTester_CleanupRestoresGlobals(t *testing.T) {
	prevLoop := scheduler.Default()
	prevHandler := errors.CurrentHandler()

	tester := NewTester(WithStrictMode())
	tester.Cleanup()

	if scheduler.Default() != prevLoop {
		t.Error("expected default loop to be restored")
	}
	if errors.CurrentHandler() != prevHandler {
		t.Error("expected error handler to be restored")
	}
}

func TestTester_StrictModeMount(t *testing.T) {
	tester := NewTesterWithT(t, WithStrictMode())
	p := &probe{}

	tester.Mount(panel{ID: "admin", Probe: p})
	if p.effectSetups != 2 || p.effectCleanups != 1 {
		t.Errorf("plain effect: setups=%d cleanups=%d, want 2/1", p.effectSetups, p.effectCleanups)
	}
	if p.trueSetups != 0 {
		t.Fatal("true effect must not run synchronously")
	}

	tester.Pump()
	if p.trueSetups != 1 || p.trueCleanups != 0 || p.unmounts != 0 {
		t.Errorf("after pump: %+v", *p)
	}

	tester.Unmount()
	tester.Pump()
	if p.trueSetups != 1 || p.trueCleanups != 1 || p.unmounts != 1 {
		t.Errorf("after unmount: %+v", *p)
	}
	if tester.Errors().Len() != 0 {
		t.Errorf("unexpected errors: %v", tester.Errors().Errors())
	}
}

func TestTester_RemountIsInvisibleToTrueHooks(t *testing.T) {
	tester := NewTesterWithT(t)
	p := &probe{}

	tester.Mount(panel{ID: "admin", Probe: p})
	tester.Pump()

	for i := 0; i < 3; i++ {
		tester.Remount()
	}
	tester.Pump()

	if p.trueSetups != 1 || p.trueCleanups != 0 || p.unmounts != 0 {
		t.Errorf("true hooks observed a diagnostic remount: %+v", *p)
	}
	if p.effectSetups != 4 || p.effectCleanups != 3 {
		t.Errorf("plain effect: setups=%d cleanups=%d, want 4/3", p.effectSetups, p.effectCleanups)
	}
	if got := tester.Counter(core.MetricDiagnosticRemounts); got != 3 {
		t.Errorf("diagnostic remounts = %d, want 3", got)
	}
	if got := tester.Counter(lifecycle.MetricEffectSetups); got != 1 {
		t.Errorf("effect setups = %d, want 1", got)
	}
}

func TestTester_UnmountBeforePumpPairsSetupAndCleanup(t *testing.T) {
	tester := NewTesterWithT(t, WithStrictMode())
	p := &probe{}

	tester.Mount(panel{ID: "admin", Probe: p})
	tester.Unmount()
	tester.Pump()

	if p.trueSetups != 1 || p.trueCleanups != 1 {
		t.Errorf("expected setup and cleanup once each: %+v", *p)
	}
	if p.unmounts != 1 {
		t.Errorf("expected unmount action once, got %d", p.unmounts)
	}
}

func TestTester_MountReplacesRoot(t *testing.T) {
	tester := NewTesterWithT(t)
	first := &probe{}
	second := &probe{}

	a := tester.Mount(panel{ID: "a", Probe: first})
	tester.Pump()
	b := tester.Mount(panel{ID: "b", Probe: second})
	tester.Pump()

	if a == b || tester.Root() != b {
		t.Error("expected a new root element")
	}
	if first.unmounts != 1 || first.trueCleanups != 1 {
		t.Errorf("expected first root to be genuinely unmounted: %+v", *first)
	}
	if second.trueSetups != 1 {
		t.Errorf("expected second root to be set up: %+v", *second)
	}
}

func TestTester_DeferDelay(t *testing.T) {
	tester := NewTesterWithT(t, WithDeferDelay(50*time.Millisecond))
	p := &probe{}

	tester.Mount(panel{ID: "admin", Probe: p})
	tester.Pump()
	if p.trueSetups != 0 {
		t.Fatal("setup ran before the defer delay elapsed")
	}
	tester.Advance(50 * time.Millisecond)
	if p.trueSetups != 1 {
		t.Errorf("expected setup after the defer delay, got %d", p.trueSetups)
	}
}

func TestTester_CleanupWaitsOutDeferDelay(t *testing.T) {
	prevHandler := errors.CurrentHandler()
	tester := NewTester(WithDeferDelay(10 * time.Millisecond))
	p := &probe{}

	tester.Mount(panel{ID: "admin", Probe: p})
	tester.Advance(20 * time.Millisecond)
	if p.trueSetups != 1 {
		t.Fatalf("expected setup after the defer delay, got %d", p.trueSetups)
	}

	tester.Cleanup()
	if p.trueCleanups != 1 {
		t.Errorf("expected cleanup to run during Cleanup, got %d", p.trueCleanups)
	}
	if p.unmounts != 1 {
		t.Errorf("expected unmount action to run during Cleanup, got %d", p.unmounts)
	}
	if n := tester.Loop().Pending(); n != 0 {
		t.Errorf("expected no pending checks after Cleanup, got %d", n)
	}
	if errors.CurrentHandler() != prevHandler {
		t.Error("expected error handler to be restored")
	}
}

func TestTester_SettleIdle(t *testing.T) {
	tester := NewTesterWithT(t, WithDeferDelay(40*time.Millisecond))
	tester.Mount(panel{ID: "admin", Probe: &probe{}})

	if err := tester.Settle(time.Second); err != nil {
		t.Errorf("expected settle, got: %v", err)
	}
}

func TestTester_SettleTimeout(t *testing.T) {
	tester := NewTesterWithT(t)
	cancel := tester.Loop().Every(10*time.Millisecond, func() {})
	defer cancel()

	if err := tester.Settle(100 * time.Millisecond); err != ErrSettleTimeout {
		t.Errorf("expected ErrSettleTimeout, got %v", err)
	}
}

func TestTester_RecordsContainedErrors(t *testing.T) {
	tester := NewTesterWithT(t)

	tester.Mount(core.Stateful(
		func() int { return 0 },
		func(int, core.BuildContext, func(func(int) int)) []core.Component {
			panic("boom")
		},
	))

	builds := tester.Errors().BuildErrors()
	if len(builds) != 1 {
		t.Fatalf("expected 1 build error, got %d", len(builds))
	}
	if builds[0].Recovered != "boom" {
		t.Errorf("unexpected recovered value %v", builds[0].Recovered)
	}
}
