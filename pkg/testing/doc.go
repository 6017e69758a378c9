// Package testing provides a deterministic harness for components that use
// the lifecycle hooks.
//
// # Quick Start
//
// Create a tester, mount a component, and drive the scheduler by hand:
//
//	func TestAutosave(t *testing.T) {
//	    tester := drifttest.NewTesterWithT(t, drifttest.WithStrictMode())
//	    tester.Mount(Autosave{})
//
//	    // Run the deferred lifecycle checks
//	    tester.Pump()
//
//	    // Move time forward and run whatever became due
//	    tester.Advance(5 * time.Second)
//
//	    tester.Unmount()
//	    tester.Pump()
//	}
//
// # Finders
//
// Locate elements in the mounted tree:
//
//	form := tester.Find(drifttest.ByType[FormComponent]()).First()
//
// # Errors
//
// The tester installs an ErrorRecorder as the global error handler for its
// lifetime. Everything contained by the runtime ends up there:
//
//	if n := len(tester.Errors().Errors()); n != 0 {
//	    t.Fatalf("unexpected lifecycle errors: %d", n)
//	}
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import drifttest "github.com/go-drift/lifecycle/pkg/testing"
package testing
