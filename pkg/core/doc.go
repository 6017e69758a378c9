// Package core provides the component and element runtime that hosts the
// lifecycle primitives.
//
// A Component is an immutable description of part of the tree. The runtime
// instantiates it as a StatefulElement, which owns exactly one State for its
// whole life. States embed StateBase and register hooks once, from InitState.
//
// # Lifecycle
//
// Mounting an element runs InitState, builds the child components, mounts
// them, runs the commit hooks and finally the mount hooks. Rebuilding (after
// SetState or Update) builds again and runs the commit hooks. Unmounting runs
// the teardowns returned by the mount hooks, then the disposers.
//
// # Strict mode
//
// With BuildOwner.StrictMode set, every first mount executes the mount hooks,
// their teardowns and the mount hooks again inside the same synchronous call.
// State and refs survive the cycle. Plain hooks (UseEffect) observe it;
// UseTrueEffect and OnTrueUnmount do not.
//
// # Hooks
//
//	type dashboardState struct {
//	    core.StateBase
//	    count *core.Managed[int]
//	}
//
//	func (s *dashboardState) InitState() {
//	    s.count = core.NewManaged(s, 0)
//	    latest := core.UseSyncedRef(s, s.count.Value)
//	    core.UseTrueEffect(s, func() lifecycle.CleanupFunc {
//	        stop := ticker(func() { report(latest.Read()) })
//	        return stop
//	    })
//	    core.OnTrueUnmount(s, func() { log.Print("dashboard closed") })
//	}
//
// State is not thread-safe. All lifecycle calls and all scheduled checks run
// on the goroutine that drives the owner's scheduler. Use scheduler.Dispatch
// or Loop.Schedule to get back onto it from a background goroutine.
package core
