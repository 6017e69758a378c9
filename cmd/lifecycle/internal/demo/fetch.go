package demo

import (
	"context"
	"time"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
)

// FetchLatency is how long a simulated request takes.
const FetchLatency = 300 * time.Millisecond

// The fetch scenario shows and hides a child that starts a request when it
// mounts and aborts it when it unmounts. The request is started from a true
// effect, so strict mode does not start and abort a throwaway one.
var fetchScenario = Scenario{
	Name:  "fetch",
	Short: "request started once per genuine mount, aborted on unmount",
	build: func(h *harness) (core.Component, []step) {
		ctl := &fetchControls{}
		return fetchApp{h: h, ctl: ctl}, []step{
			{at: 0, name: "show", do: func() { ctl.toggle() }},
			{at: 100 * time.Millisecond, name: "hide", do: func() { ctl.toggle() }},
			{at: 200 * time.Millisecond, name: "show", do: func() { ctl.toggle() }},
			{at: 200*time.Millisecond + FetchLatency + 100*time.Millisecond, name: "inspect", do: func() {}, snapshot: true},
			{at: 700 * time.Millisecond, name: "hide", do: func() { ctl.toggle() }},
			{at: 800 * time.Millisecond, name: "close", do: func() {}},
		}
	},
}

type fetchControls struct {
	toggle   func()
	requests int
}

type fetchApp struct {
	core.StatefulBase
	h   *harness
	ctl *fetchControls
}

func (fetchApp) CreateState() core.State { return &fetchAppState{} }

type fetchAppState struct {
	core.StateBase
	visible *core.Managed[bool]
}

func (s *fetchAppState) InitState() {
	app := s.Element().Component().(fetchApp)
	s.visible = core.NewManaged(s, false)
	app.ctl.toggle = func() {
		s.visible.Update(func(v bool) bool { return !v })
		if s.visible.Value() {
			app.h.emit("child shown")
		} else {
			app.h.emit("child hidden")
		}
	}
}

func (s *fetchAppState) Build(ctx core.BuildContext) []core.Component {
	app := ctx.Component().(fetchApp)
	if !s.visible.Value() {
		return []core.Component{nil}
	}
	return []core.Component{fetchChild{h: app.h, ctl: app.ctl}}
}

type fetchChild struct {
	core.StatefulBase
	h   *harness
	ctl *fetchControls
}

func (fetchChild) CreateState() core.State { return &fetchChildState{} }

type fetchChildState struct {
	core.StateBase
}

func (s *fetchChildState) InitState() {
	c := s.Element().Component().(fetchChild)
	h := c.h

	core.UseEffect(s, func() lifecycle.CleanupFunc {
		h.emit("plain effect setup")
		return func() { h.emit("plain effect cleanup") }
	})

	core.UseTrueEffect(s, func() lifecycle.CleanupFunc {
		c.ctl.requests++
		id := c.ctl.requests
		ctx, cancel := context.WithCancel(context.Background())
		h.emit("request %d started", id)

		h.loop.ScheduleAfter(FetchLatency, func() {
			if ctx.Err() != nil {
				h.emit("request %d aborted", id)
				return
			}
			h.emit("request %d completed", id)
		})

		return func() {
			h.emit("unmounted, aborting request %d", id)
			cancel()
		}
	})
}

func (s *fetchChildState) HookNames() []string {
	return []string{"UseEffect", "UseTrueEffect"}
}
