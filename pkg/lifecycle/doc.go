// Package lifecycle provides primitives for callbacks that outlive a single
// synchronous lifecycle transition.
//
// A development-mode host runtime may mount a component, unmount it and mount
// it again inside one synchronous call, purely to surface unsafe side
// effects. Plain mount/unmount hooks cannot tell that diagnostic cycle apart
// from a genuine one. The primitives here can:
//
//   - [Cell] holds the latest committed value behind a stable pointer, so a
//     timer or listener registered once always reads the current value.
//   - [Tracker] numbers every mount execution. A check scheduled past the
//     synchronous phase compares its captured [Snapshot] with the current
//     generation: a diagnostic remount has advanced it, a genuine unmount has
//     not.
//   - [UnmountCallback] runs an action only on a genuine unmount.
//   - [Effect] runs a setup action only on a genuine mount and its cleanup
//     only on the genuine unmount that follows.
//
// All primitives are driven from a single goroutine: the host calls Mount and
// Unmount synchronously and the [Scheduler] runs deferred checks later on the
// same goroutine. Failures inside user actions are recovered and reported
// through the errors package; they never reach the host.
//
// Example, with a host that calls Mount/Unmount from its own hooks:
//
//	effect := lifecycle.NewEffect(loop, func() lifecycle.CleanupFunc {
//	    conn := dial()
//	    return func() { conn.Close() }
//	})
//	effect.Mount()
//	effect.Unmount() // diagnostic cycle
//	effect.Mount()
//	loop.Flush()     // dial runs once
package lifecycle
