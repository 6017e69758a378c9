package testing

import (
	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/lifecycle"
)

// probe counts what the true hooks and a plain effect observe.
type probe struct {
	effectSetups   int
	effectCleanups int
	trueSetups     int
	trueCleanups   int
	unmounts       int
}

// panel is a leaf component wired with every hook.
type panel struct {
	core.StatefulBase
	ID    string
	Probe *probe
}

func (p panel) Key() any { return p.ID }

func (panel) CreateState() core.State { return &panelState{} }

type panelState struct {
	core.StateBase
}

func (s *panelState) probe() *probe {
	return s.Element().Component().(panel).Probe
}

func (s *panelState) InitState() {
	core.UseEffect(s, func() lifecycle.CleanupFunc {
		s.probe().effectSetups++
		return func() { s.probe().effectCleanups++ }
	})
	core.UseTrueEffect(s, func() lifecycle.CleanupFunc {
		s.probe().trueSetups++
		return func() { s.probe().trueCleanups++ }
	})
	core.OnTrueUnmount(s, func() { s.probe().unmounts++ })
}

// shell renders its panels in order.
type shell struct {
	core.StatefulBase
	Panels []panel
}

func (shell) CreateState() core.State { return &shellState{} }

type shellState struct {
	core.StateBase
}

func (s *shellState) Build(ctx core.BuildContext) []core.Component {
	panels := ctx.Component().(shell).Panels
	out := make([]core.Component, len(panels))
	for i, p := range panels {
		out[i] = p
	}
	return out
}
