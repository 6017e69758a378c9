package demo

import (
	"time"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
)

// The admin scenario toggles an admin dashboard on, uses it, and toggles it
// off. The plain effect logs every mount execution; the true unmount
// callback logs once, when the dashboard is really gone.
var adminScenario = Scenario{
	Name:  "admin",
	Short: "plain unmount vs true unmount on a toggled dashboard",
	build: func(h *harness) (core.Component, []step) {
		ctl := &adminControls{}
		return adminApp{h: h, ctl: ctl}, []step{
			{at: 0, name: "become admin", do: func() { ctl.toggle() }},
			{at: 100 * time.Millisecond, name: "increment", do: func() { ctl.increment() }},
			{at: 200 * time.Millisecond, name: "increment", do: func() { ctl.increment() }, snapshot: true},
			{at: 400 * time.Millisecond, name: "become user", do: func() { ctl.toggle() }},
			{at: 600 * time.Millisecond, name: "close", do: func() {}},
		}
	},
}

type adminControls struct {
	toggle    func()
	increment func()
}

type adminApp struct {
	core.StatefulBase
	h   *harness
	ctl *adminControls
}

func (adminApp) CreateState() core.State { return &adminAppState{} }

type adminAppState struct {
	core.StateBase
	isAdmin *core.Managed[bool]
	counter *core.Managed[int]
}

func (s *adminAppState) InitState() {
	app := s.Element().Component().(adminApp)
	s.isAdmin = core.NewManaged(s, false)
	s.counter = core.NewManaged(s, 0)

	app.ctl.toggle = func() {
		s.isAdmin.Update(func(v bool) bool { return !v })
		role := "user"
		if s.isAdmin.Value() {
			role = "admin"
		}
		app.h.emit("current user is %s", role)
	}
	app.ctl.increment = func() {
		s.counter.Update(func(v int) int { return v + 1 })
	}
}

func (s *adminAppState) Build(ctx core.BuildContext) []core.Component {
	app := ctx.Component().(adminApp)
	if !s.isAdmin.Value() {
		return []core.Component{nil}
	}
	return []core.Component{adminDashboard{h: app.h, counter: s.counter.Value()}}
}

type adminDashboard struct {
	core.StatefulBase
	h       *harness
	counter int
}

func (adminDashboard) CreateState() core.State { return &adminDashboardState{} }

type adminDashboardState struct {
	core.StateBase
}

func (s *adminDashboardState) InitState() {
	h := s.Element().Component().(adminDashboard).h

	core.OnTrueUnmount(s, func() {
		h.emit("admin dashboard completely unmounted")
	})
	core.UseEffect(s, func() lifecycle.CleanupFunc {
		h.emit("admin dashboard mounted")
		return func() { h.emit("admin dashboard unmounted") }
	})
}

func (s *adminDashboardState) DidUpdateComponent(old core.Component) {
	c := s.Element().Component().(adminDashboard)
	if c.counter != old.(adminDashboard).counter {
		c.h.emit("counter: %d", c.counter)
	}
}

func (s *adminDashboardState) HookNames() []string {
	return []string{"OnTrueUnmount", "UseEffect"}
}
