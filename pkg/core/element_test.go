package core

import (
	"testing"

	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// testComponent is a simple component for testing.
type testComponent struct {
	StatefulBase
	name    string
	key     any
	log     *[]string
	buildFn func(s *testState) []Component
}

func (c testComponent) Key() any { return c.key }

func (c testComponent) CreateState() State {
	return &testState{}
}

type testState struct {
	StateBase
}

func (s *testState) comp() testComponent {
	return s.Element().Component().(testComponent)
}

func (s *testState) record(event string) {
	c := s.comp()
	if c.log != nil {
		*c.log = append(*c.log, c.name+":"+event)
	}
}

func (s *testState) InitState() {
	s.record("init")
	UseEffect(s, func() lifecycle.CleanupFunc {
		s.record("mount")
		return func() { s.record("unmount") }
	})
}

func (s *testState) Build(ctx BuildContext) []Component {
	s.record("build")
	if fn := s.comp().buildFn; fn != nil {
		return fn(s)
	}
	return nil
}

func (s *testState) Dispose() {
	s.record("dispose")
	s.StateBase.Dispose()
}

// testErrorHandler captures errors for testing.
type testErrorHandler struct {
	errors.LogHandler
	buildErrors     []*errors.BuildError
	lifecycleErrors []*errors.LifecycleError
}

func (h *testErrorHandler) HandleBuildError(err *errors.BuildError) {
	h.buildErrors = append(h.buildErrors, err)
}

func (h *testErrorHandler) HandleError(err *errors.LifecycleError) {
	h.lifecycleErrors = append(h.lifecycleErrors, err)
}

func installTestHandler(t *testing.T) *testErrorHandler {
	t.Helper()
	handler := &testErrorHandler{}
	old := errors.CurrentHandler()
	errors.SetHandler(handler)
	t.Cleanup(func() { errors.SetHandler(old) })
	return handler
}

func assertEvents(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestStatefulElement_MountOrder(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())

	owner.Attach(testComponent{
		name: "parent",
		log:  &log,
		buildFn: func(s *testState) []Component {
			return []Component{testComponent{name: "child", log: &log}}
		},
	})

	assertEvents(t, log, []string{
		"parent:init",
		"parent:build",
		"child:init",
		"child:build",
		"child:mount",
		"parent:mount",
	})
}

func TestStatefulElement_UnmountOrder(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())

	root := owner.Attach(testComponent{
		name: "parent",
		log:  &log,
		buildFn: func(s *testState) []Component {
			return []Component{testComponent{name: "child", log: &log}}
		},
	})
	log = nil

	owner.Detach(root)

	assertEvents(t, log, []string{
		"child:unmount",
		"child:dispose",
		"parent:unmount",
		"parent:dispose",
	})
	if root.IsMounted() {
		t.Error("expected root to be unmounted")
	}
	if len(owner.Roots()) != 0 {
		t.Errorf("expected no roots after detach, got %d", len(owner.Roots()))
	}
}

func TestStatefulElement_StrictModeCycle(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())
	owner.StrictMode = true

	owner.Attach(testComponent{name: "dash", log: &log})

	assertEvents(t, log, []string{
		"dash:init",
		"dash:build",
		"dash:mount",
		"dash:unmount",
		"dash:mount",
	})
}

func TestStatefulElement_ConditionalChild(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())
	var show *Managed[bool]

	root := owner.Attach(testComponent{
		name: "app",
		log:  &log,
		buildFn: func(s *testState) []Component {
			if show == nil {
				show = NewManaged(s, false)
			}
			if !show.Value() {
				return []Component{nil}
			}
			return []Component{testComponent{name: "admin", log: &log}}
		},
	})
	if len(root.Children()) != 0 {
		t.Fatalf("expected no children, got %d", len(root.Children()))
	}

	show.Set(true)
	owner.FlushBuild()
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children()))
	}
	child := root.Children()[0]
	if child.Parent() != root || child.Depth() != 1 {
		t.Errorf("unexpected child placement: parent=%v depth=%d", child.Parent(), child.Depth())
	}

	log = nil
	show.Set(false)
	owner.FlushBuild()
	if child.IsMounted() {
		t.Error("expected child to be unmounted")
	}
	assertEvents(t, log, []string{"app:build", "admin:unmount", "admin:dispose"})
}

func TestStatefulElement_UpdateKeepsState(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())
	var label *Managed[string]

	root := owner.Attach(testComponent{
		name: "list",
		log:  &log,
		buildFn: func(s *testState) []Component {
			if label == nil {
				label = NewManaged(s, "a")
			}
			return []Component{testComponent{name: "item-" + label.Value(), key: "item", log: &log}}
		},
	})
	first := root.Children()[0]
	firstState := first.State()

	label.Set("b")
	owner.FlushBuild()

	second := root.Children()[0]
	if second != first || second.State() != firstState {
		t.Error("expected element and state to be reused for same type and key")
	}
	if got := second.Component().(testComponent).name; got != "item-b" {
		t.Errorf("expected updated component, got %q", got)
	}
}

func TestStatefulElement_KeyChangeReplacesElement(t *testing.T) {
	owner := NewBuildOwner(scheduler.NewLoop())
	var key *Managed[int]

	root := owner.Attach(testComponent{
		buildFn: func(s *testState) []Component {
			if key == nil {
				key = NewManaged(s, 1)
			}
			return []Component{testComponent{key: key.Value()}}
		},
	})
	first := root.Children()[0]

	key.Set(2)
	owner.FlushBuild()

	second := root.Children()[0]
	if second == first {
		t.Error("expected a new element after key change")
	}
	if first.IsMounted() {
		t.Error("expected old element to be unmounted")
	}
}

func TestStatefulElement_BuildPanic_ReportsError(t *testing.T) {
	handler := installTestHandler(t)
	owner := NewBuildOwner(scheduler.NewLoop())

	root := owner.Attach(testComponent{
		buildFn: func(s *testState) []Component {
			panic("test panic in build")
		},
	})

	if len(handler.buildErrors) != 1 {
		t.Fatalf("expected 1 build error, got %d", len(handler.buildErrors))
	}
	err := handler.buildErrors[0]
	if err.Recovered != "test panic in build" {
		t.Errorf("expected panic value 'test panic in build', got %v", err.Recovered)
	}
	if err.Component != "core.testComponent" {
		t.Errorf("expected component type, got %q", err.Component)
	}
	if err.Element != root.ID() {
		t.Errorf("expected element id %q, got %q", root.ID(), err.Element)
	}
	if err.StackTrace == "" {
		t.Error("expected StackTrace to be captured")
	}
	if !root.IsMounted() {
		t.Error("a failing build must not abort the mount")
	}
}

func TestStateBase_HookPanicsAreContained(t *testing.T) {
	handler := installTestHandler(t)
	owner := NewBuildOwner(scheduler.NewLoop())

	root := owner.Attach(hookComponent{init: func(s *hookState) {
		s.OnCommit(func() { panic("commit") })
		s.OnMount(func() func() {
			return func() { panic("teardown") }
		})
		s.OnDispose(func() { panic("dispose") })
	}})
	owner.Detach(root)

	kinds := make([]errors.ErrorKind, 0, len(handler.lifecycleErrors))
	for _, err := range handler.lifecycleErrors {
		kinds = append(kinds, err.Kind)
	}
	want := []errors.ErrorKind{errors.KindCommit, errors.KindCleanup, errors.KindCleanup}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestStateBase_SetStateAfterDispose(t *testing.T) {
	owner := NewBuildOwner(scheduler.NewLoop())
	var st *hookState
	root := owner.Attach(hookComponent{init: func(s *hookState) { st = s }})
	owner.Detach(root)

	called := false
	st.SetState(func() { called = true })
	if called {
		t.Error("SetState after dispose should be a no-op")
	}
	if owner.NeedsWork() {
		t.Error("disposed state should not schedule a build")
	}
}

func TestStateBase_OnDisposeAfterDisposeRunsImmediately(t *testing.T) {
	base := &StateBase{}
	base.Dispose()

	ran := false
	base.OnDispose(func() { ran = true })
	if !ran {
		t.Error("expected cleanup to run immediately on a disposed state")
	}
}

func TestStateBase_OnDisposeUnregister(t *testing.T) {
	base := &StateBase{}
	ran := false
	unregister := base.OnDispose(func() { ran = true })
	unregister()
	base.Dispose()
	if ran {
		t.Error("unregistered disposer should not run")
	}
}

func TestBuildOwner_RemountRunsDiagnosticCycle(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())

	root := owner.Attach(testComponent{
		name: "parent",
		log:  &log,
		buildFn: func(s *testState) []Component {
			return []Component{testComponent{name: "child", log: &log}}
		},
	})
	log = nil

	owner.Remount(root)

	assertEvents(t, log, []string{
		"child:unmount",
		"parent:unmount",
		"child:mount",
		"parent:mount",
	})
}

func TestBuildOwner_FlushBuildDepthOrder(t *testing.T) {
	var log []string
	owner := NewBuildOwner(scheduler.NewLoop())

	root := owner.Attach(testComponent{
		name: "parent",
		log:  &log,
		buildFn: func(s *testState) []Component {
			return []Component{testComponent{name: "child", key: "c", log: &log}}
		},
	})
	child := root.Children()[0]
	log = nil

	child.MarkNeedsBuild()
	root.MarkNeedsBuild()
	if !owner.NeedsWork() {
		t.Fatal("expected pending work")
	}
	owner.FlushBuild()

	if len(log) == 0 || log[0] != "parent:build" {
		t.Errorf("expected parent to build first, got %v", log)
	}
	if owner.NeedsWork() {
		t.Error("expected no pending work after flush")
	}
}

func TestBuildOwner_OnNeedsBuild(t *testing.T) {
	owner := NewBuildOwner(scheduler.NewLoop())
	requests := 0
	owner.OnNeedsBuild = func() { requests++ }

	root := owner.Attach(testComponent{})
	root.MarkNeedsBuild()
	root.MarkNeedsBuild()

	if requests != 1 {
		t.Errorf("expected 1 build request, got %d", requests)
	}
}

func TestBuildOwner_Metrics(t *testing.T) {
	scope := tally.NewTestScope("test", nil)
	owner := NewBuildOwner(scheduler.NewLoop())
	owner.Metrics = scope
	owner.StrictMode = true

	root := owner.Attach(testComponent{})
	owner.Detach(root)

	counters := scope.Snapshot().Counters()
	for name, want := range map[string]int64{
		MetricMounts:             1,
		MetricUnmounts:           1,
		MetricDiagnosticRemounts: 1,
	} {
		c, ok := counters["test."+name+"+"]
		if !ok {
			t.Errorf("missing counter %q", name)
			continue
		}
		if c.Value() != want {
			t.Errorf("counter %q = %d, want %d", name, c.Value(), want)
		}
	}
}

func TestNewBuildOwner_DefaultScheduler(t *testing.T) {
	owner := NewBuildOwner(nil)
	if owner.Scheduler() == nil {
		t.Fatal("expected default scheduler")
	}
	if owner.Scheduler() != lifecycle.Scheduler(scheduler.Default()) {
		t.Error("expected scheduler.Default()")
	}
}

func TestStatefulElement_IDsAreUnique(t *testing.T) {
	owner := NewBuildOwner(scheduler.NewLoop())
	a := owner.Attach(testComponent{})
	b := owner.Attach(testComponent{})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected unique non-empty ids, got %q and %q", a.ID(), b.ID())
	}
	if b.Slot() != 1 {
		t.Errorf("expected second root in slot 1, got %v", b.Slot())
	}
}
