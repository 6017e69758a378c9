package core

// Component describes part of the tree. Components are compared by type and
// Key to decide whether an existing element can be updated in place.
type Component interface {
	CreateState() State
	Key() any
}

// State is the mutable, long-lived half of a component.
type State interface {
	// InitState runs once per element, before the first build. Hooks are
	// registered here.
	InitState()
	// Build returns the child components. Nil entries are empty slots.
	Build(ctx BuildContext) []Component
	// DidUpdateComponent runs when the element receives a new component.
	DidUpdateComponent(old Component)
	// Dispose runs once, after the element is unmounted.
	Dispose()
}

// BuildContext is the element handle passed to Build.
type BuildContext interface {
	ID() string
	Depth() int
	Component() Component
	Owner() *BuildOwner
}

// Disposable is implemented by controllers released with UseController.
type Disposable interface {
	Dispose()
}
