package core

// StatefulBase provides a default Key implementation for components. Embed it
// in your component struct so only CreateState is left to write:
//
//	type Counter struct {
//	    core.StatefulBase
//	}
//
//	func (Counter) CreateState() core.State { return &counterState{} }
type StatefulBase struct{}

// Key returns nil (no key).
func (StatefulBase) Key() any { return nil }

// Stateful creates an inline component using closures.
// Use this for small, self-contained fragments that don't need hooks.
//
//	component := core.Stateful(
//	    func() int { return 0 },
//	    func(count int, ctx core.BuildContext, setState func(func(int) int)) []core.Component {
//	        return nil
//	    },
//	)
//
// For components that register lifecycle hooks, embed [StatefulBase] in a
// named struct and embed [StateBase] in its state instead.
func Stateful[S any](
	init func() S,
	build func(state S, ctx BuildContext, setState func(func(S) S)) []Component,
) Component {
	return &inlineComponent[S]{
		initFn:  init,
		buildFn: build,
	}
}

type inlineComponent[S any] struct {
	initFn  func() S
	buildFn func(state S, ctx BuildContext, setState func(func(S) S)) []Component
}

func (c *inlineComponent[S]) Key() any { return nil }

func (c *inlineComponent[S]) CreateState() State {
	return &inlineState[S]{
		initFn:  c.initFn,
		buildFn: c.buildFn,
	}
}

type inlineState[S any] struct {
	value   S
	initFn  func() S
	buildFn func(state S, ctx BuildContext, setState func(func(S) S)) []Component
	element *StatefulElement
}

func (s *inlineState[S]) SetElement(element *StatefulElement) {
	s.element = element
}

func (s *inlineState[S]) InitState() {
	s.value = s.initFn()
}

func (s *inlineState[S]) Build(ctx BuildContext) []Component {
	return s.buildFn(s.value, ctx, func(update func(S) S) {
		s.value = update(s.value)
		if s.element != nil {
			s.element.MarkNeedsBuild()
		}
	})
}

func (s *inlineState[S]) Dispose()                     {}
func (s *inlineState[S]) DidUpdateComponent(Component) {}
