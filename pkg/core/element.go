package core

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// StatefulElement hosts a Component and its State.
type StatefulElement struct {
	id        string
	component Component
	state     State
	parent    *StatefulElement
	children  []*StatefulElement
	depth     int
	slot      any
	owner     *BuildOwner
	dirty     bool
	mounted   bool
}

// NewStatefulElement creates an unmounted element for component.
func NewStatefulElement(component Component, owner *BuildOwner) *StatefulElement {
	return &StatefulElement{
		id:        uuid.NewString(),
		component: component,
		owner:     owner,
	}
}

// ID returns the element's unique id.
func (e *StatefulElement) ID() string {
	return e.id
}

// Component returns the current component.
func (e *StatefulElement) Component() Component {
	return e.component
}

// State returns the element's state, or nil before Mount.
func (e *StatefulElement) State() State {
	return e.state
}

// Depth returns the distance from the root.
func (e *StatefulElement) Depth() int {
	return e.depth
}

// Owner returns the BuildOwner, which may be nil for detached elements.
func (e *StatefulElement) Owner() *BuildOwner {
	return e.owner
}

// Parent returns the parent element, or nil for a root.
func (e *StatefulElement) Parent() *StatefulElement {
	return e.parent
}

// Slot returns the position assigned by the parent.
func (e *StatefulElement) Slot() any {
	return e.slot
}

// IsMounted reports whether the element is in the tree.
func (e *StatefulElement) IsMounted() bool {
	return e.mounted
}

// Children returns the mounted children in slot order.
func (e *StatefulElement) Children() []*StatefulElement {
	out := make([]*StatefulElement, 0, len(e.children))
	for _, child := range e.children {
		if child != nil {
			out = append(out, child)
		}
	}
	return out
}

// MarkNeedsBuild schedules a rebuild with the owner.
func (e *StatefulElement) MarkNeedsBuild() {
	if e.dirty {
		return
	}
	e.dirty = true
	if e.owner != nil {
		e.owner.ScheduleBuild(e)
	}
}

// Mount inserts the element into the tree: InitState, build, mount the
// children, commit, then run the mount hooks.
func (e *StatefulElement) Mount(parent *StatefulElement, slot any) {
	e.parent = parent
	e.slot = slot
	if parent != nil {
		e.depth = parent.Depth() + 1
	}
	e.mounted = true
	e.state = e.component.CreateState()
	if setter, ok := e.state.(interface{ SetElement(*StatefulElement) }); ok {
		setter.SetElement(e)
	}
	e.state.InitState()
	e.dirty = true
	e.RebuildIfNeeded()

	if e.owner != nil {
		e.owner.mountEffects(e)
	} else if base := baseOf(e.state); base != nil {
		base.runMountHooks()
	}
}

// Update replaces the component and schedules a rebuild.
func (e *StatefulElement) Update(newComponent Component) {
	old := e.component
	e.component = newComponent
	e.state.DidUpdateComponent(old)
	e.MarkNeedsBuild()
}

// Unmount removes the element and its subtree: children first, then the
// teardowns of this element's mount hooks, then Dispose.
func (e *StatefulElement) Unmount() {
	if !e.mounted {
		return
	}
	e.mounted = false
	for _, child := range e.children {
		if child != nil {
			child.Unmount()
		}
	}
	e.children = nil
	if base := baseOf(e.state); base != nil {
		base.runUnmountHooks()
	}
	if e.state != nil {
		e.state.Dispose()
	}
	if e.owner != nil {
		e.owner.metrics().Counter(MetricUnmounts).Inc(1)
	}
}

// RebuildIfNeeded builds the children if the element is dirty and commits.
func (e *StatefulElement) RebuildIfNeeded() {
	if !e.dirty || !e.mounted {
		return
	}
	e.dirty = false
	built := e.safeBuild(func() []Component {
		return e.state.Build(e)
	})
	e.children = updateChildren(e.children, built, e, e.owner)
	if base := baseOf(e.state); base != nil {
		base.runCommitHooks()
	}
}

// VisitChildren calls visitor for each mounted child until it returns false.
func (e *StatefulElement) VisitChildren(visitor func(*StatefulElement) bool) {
	for _, child := range e.children {
		if child == nil {
			continue
		}
		if !visitor(child) {
			return
		}
	}
}

// FindAncestor returns the nearest ancestor matching predicate.
func (e *StatefulElement) FindAncestor(predicate func(*StatefulElement) bool) *StatefulElement {
	for current := e.parent; current != nil; current = current.parent {
		if predicate(current) {
			return current
		}
	}
	return nil
}

// diagnosticCycle runs the unmount hooks and then the mount hooks of the
// whole subtree, children before parents, without touching state.
func (e *StatefulElement) diagnosticCycle() {
	e.visitPostOrder(func(el *StatefulElement) {
		if base := baseOf(el.state); base != nil {
			base.runUnmountHooks()
		}
	})
	e.visitPostOrder(func(el *StatefulElement) {
		if base := baseOf(el.state); base != nil {
			base.runMountHooks()
		}
	})
}

func (e *StatefulElement) visitPostOrder(fn func(*StatefulElement)) {
	for _, child := range e.children {
		if child != nil && child.mounted {
			child.visitPostOrder(fn)
		}
	}
	fn(e)
}

// safeBuild executes a build function with panic recovery.
// If the build panics, it reports the error and returns no children.
func (e *StatefulElement) safeBuild(buildFn func() []Component) []Component {
	var built []Component
	var buildErr *errors.BuildError

	func() {
		defer func() {
			if r := recover(); r != nil {
				buildErr = &errors.BuildError{
					Component:  fmt.Sprintf("%T", e.component),
					Element:    e.id,
					Recovered:  r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				}
			}
		}()
		built = buildFn()
	}()

	if buildErr != nil {
		errors.ReportBuildError(buildErr)
		return nil
	}
	return built
}

func baseOf(state State) *StateBase {
	if sb, ok := state.(stateBase); ok {
		return sb.state()
	}
	return nil
}

func updateChildren(existing []*StatefulElement, components []Component, parent *StatefulElement, owner *BuildOwner) []*StatefulElement {
	if len(components) == 0 && len(existing) == 0 {
		return nil
	}
	next := make([]*StatefulElement, len(components))
	for slot, component := range components {
		var current *StatefulElement
		if slot < len(existing) {
			current = existing[slot]
		}
		next[slot] = updateChild(current, component, parent, owner, slot)
	}
	for slot := len(components); slot < len(existing); slot++ {
		if existing[slot] != nil {
			existing[slot].Unmount()
		}
	}
	return next
}

func updateChild(existing *StatefulElement, component Component, parent *StatefulElement, owner *BuildOwner, slot int) *StatefulElement {
	if component == nil {
		if existing != nil {
			existing.Unmount()
		}
		return nil
	}
	if existing != nil && canUpdateComponent(existing.component, component) {
		existing.Update(component)
		return existing
	}
	if existing != nil {
		existing.Unmount()
	}
	element := NewStatefulElement(component, owner)
	element.Mount(parent, slot)
	return element
}

func canUpdateComponent(existing Component, next Component) bool {
	if existing == nil || next == nil {
		return false
	}
	if reflect.TypeOf(existing) != reflect.TypeOf(next) {
		return false
	}
	return reflect.DeepEqual(existing.Key(), next.Key())
}
