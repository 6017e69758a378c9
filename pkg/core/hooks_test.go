package core

import (
	"testing"

	"github.com/go-drift/lifecycle/pkg/lifecycle"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// MockDisposable for testing UseController
type mockDisposable struct {
	disposed bool
}

func (m *mockDisposable) Dispose() {
	m.disposed = true
}

func TestUseController(t *testing.T) {
	base := &StateBase{}

	controller := UseController(base, func() *mockDisposable {
		return &mockDisposable{}
	})

	if controller.disposed {
		t.Error("Controller should not be disposed initially")
	}

	base.Dispose()

	if !controller.disposed {
		t.Error("Controller should be disposed when StateBase is disposed")
	}
}

func TestManaged_Value(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 42)

	if state.Value() != 42 {
		t.Errorf("Expected 42, got %d", state.Value())
	}
}

func TestManaged_Set(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 0)

	state.Set(100)

	if state.Value() != 100 {
		t.Errorf("Expected 100, got %d", state.Value())
	}
}

func TestManaged_Update(t *testing.T) {
	base := &StateBase{}
	state := NewManaged(base, 10)

	state.Update(func(v int) int { return v * 2 })

	if state.Value() != 20 {
		t.Errorf("Expected 20, got %d", state.Value())
	}
}

func TestManaged_StructType(t *testing.T) {
	type Form struct {
		Name  string
		Email string
	}

	base := &StateBase{}
	state := NewManaged(base, Form{Name: "Alice"})

	state.Update(func(f Form) Form {
		f.Email = "alice@example.com"
		return f
	})

	if state.Value().Email != "alice@example.com" || state.Value().Name != "Alice" {
		t.Errorf("Unexpected struct value: %+v", state.Value())
	}
}

// hookState registers the hooks under test from InitState.
type hookState struct {
	StateBase
	init func(s *hookState)
}

func (s *hookState) InitState() {
	if s.init != nil {
		s.init(s)
	}
}

type hookComponent struct {
	StatefulBase
	init func(s *hookState)
}

func (c hookComponent) CreateState() State { return &hookState{init: c.init} }

func newStrictOwner() (*BuildOwner, *scheduler.Loop) {
	loop := scheduler.NewLoop()
	owner := NewBuildOwner(loop)
	owner.StrictMode = true
	return owner, loop
}

func TestUseEffect_RunsOnDiagnosticCycle(t *testing.T) {
	owner, _ := newStrictOwner()
	var events []string

	element := owner.Attach(hookComponent{init: func(s *hookState) {
		UseEffect(s, func() lifecycle.CleanupFunc {
			events = append(events, "setup")
			return func() { events = append(events, "cleanup") }
		})
	}})

	want := []string{"setup", "cleanup", "setup"}
	if len(events) != len(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, events[i], want[i])
		}
	}

	owner.Detach(element)
	if events[len(events)-1] != "cleanup" {
		t.Errorf("expected cleanup on detach, got %v", events)
	}
}

func TestUseTrueEffect_StrictModeRunsSetupOnce(t *testing.T) {
	owner, loop := newStrictOwner()
	setups, cleanups := 0, 0

	element := owner.Attach(hookComponent{init: func(s *hookState) {
		UseTrueEffect(s, func() lifecycle.CleanupFunc {
			setups++
			return func() { cleanups++ }
		})
	}})

	if setups != 0 {
		t.Fatalf("setup ran during the synchronous phase (%d)", setups)
	}
	loop.Flush()
	if setups != 1 || cleanups != 0 {
		t.Fatalf("after settle: setups=%d cleanups=%d, want 1/0", setups, cleanups)
	}

	owner.Detach(element)
	if cleanups != 0 {
		t.Fatal("cleanup ran before the deferred check")
	}
	loop.Flush()
	if setups != 1 || cleanups != 1 {
		t.Errorf("after detach: setups=%d cleanups=%d, want 1/1", setups, cleanups)
	}
}

func TestOnTrueUnmount_IgnoresStrictModeCycle(t *testing.T) {
	owner, loop := newStrictOwner()
	calls := 0

	element := owner.Attach(hookComponent{init: func(s *hookState) {
		OnTrueUnmount(s, func() { calls++ })
	}})
	loop.Flush()
	if calls != 0 {
		t.Fatalf("unmount action ran for a diagnostic unmount (%d)", calls)
	}

	owner.Remount(element)
	loop.Flush()
	if calls != 0 {
		t.Fatalf("unmount action ran for an explicit diagnostic remount (%d)", calls)
	}

	owner.Detach(element)
	loop.Flush()
	if calls != 1 {
		t.Errorf("expected 1 call after genuine unmount, got %d", calls)
	}
}

func TestUseSyncedRef_TracksCommits(t *testing.T) {
	owner, loop := newStrictOwner()
	var (
		value  *Managed[int]
		synced *lifecycle.Cell[int]
	)

	owner.Attach(hookComponent{init: func(s *hookState) {
		value = NewManaged(s, 0)
		synced = UseSyncedRef(s, value.Value)
	}})

	var observed int
	loop.Schedule(func() { observed = synced.Read() })

	value.Set(5)
	owner.FlushBuild()
	value.Set(7)
	owner.FlushBuild()
	loop.Flush()

	if observed != 7 {
		t.Errorf("deferred read observed %d, want 7", observed)
	}
}

func TestUseSyncedRef_NotUpdatedBeforeCommit(t *testing.T) {
	owner, _ := newStrictOwner()
	var (
		value  *Managed[string]
		synced *lifecycle.Cell[string]
	)

	owner.Attach(hookComponent{init: func(s *hookState) {
		value = NewManaged(s, "draft")
		synced = UseSyncedRef(s, value.Value)
	}})

	value.Set("edited")
	if got := synced.Read(); got != "draft" {
		t.Errorf("expected cell to hold last committed value, got %q", got)
	}
	owner.FlushBuild()
	if got := synced.Read(); got != "edited" {
		t.Errorf("expected cell to hold %q after commit, got %q", "edited", got)
	}
}

func TestHooks_UnmountedStateUsesDefaultScheduler(t *testing.T) {
	loop := scheduler.NewLoop()
	prev := scheduler.SetDefault(loop)
	defer scheduler.SetDefault(prev)

	base := &StateBase{}
	calls := 0
	cb := OnTrueUnmount(base, func() { calls++ })

	cb.Mount()
	cb.Unmount()
	loop.Flush()
	if calls != 1 {
		t.Errorf("expected unmount action on default loop, got %d calls", calls)
	}
}
