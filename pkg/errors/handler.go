package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported error. Use SetHandler to
	// replace it; tests swap it for a recorder.
	DefaultHandler ErrorHandler = &LogHandler{}
	handlerMu      sync.RWMutex

	// fallback receives errors from Contain when the installed handler
	// panics while handling them.
	fallback = &LogHandler{}
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	DefaultHandler = h
	handlerMu.Unlock()
}

// CurrentHandler returns the handler errors are currently reported to.
func CurrentHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// stamp fills a zero timestamp and returns the handler to deliver to.
func stamp(ts *time.Time) ErrorHandler {
	if ts.IsZero() {
		*ts = time.Now()
	}
	return CurrentHandler()
}

// Report sends a lifecycle error to the global handler, stamping it with the
// current time if it has none. A nil error is ignored.
func Report(err *LifecycleError) {
	if err == nil {
		return
	}
	if h := stamp(&err.Timestamp); h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if h := stamp(&err.Timestamp); h != nil {
		h.HandlePanic(err)
	}
}

// ReportBuildError sends a build error to the global handler.
func ReportBuildError(err *BuildError) {
	if err == nil {
		return
	}
	if h := stamp(&err.Timestamp); h != nil {
		h.HandleBuildError(err)
	}
}

// Contain runs fn and reports any returned error or panic as a
// LifecycleError of the given kind. It returns true if fn completed without
// failing. Contain itself never panics.
func Contain(op string, kind ErrorKind, component string, fn func() error) (ok bool) {
	if fn == nil {
		return true
	}
	failed := &LifecycleError{Op: op, Kind: kind, Component: component}
	defer func() {
		if r := recover(); r != nil {
			ok = false
			failed.Recovered = r
			failed.StackTrace = CaptureStack()
			reportContained(failed)
		}
	}()
	if failed.Err = fn(); failed.Err != nil {
		reportContained(failed)
		return false
	}
	return true
}

// reportContained reports err, falling back to stderr if the installed
// handler panics.
func reportContained(err *LifecycleError) {
	defer func() {
		if r := recover(); r != nil {
			fallback.HandleError(err)
			fallback.HandlePanic(&PanicError{
				Op:         "errors.handler",
				Value:      r,
				StackTrace: CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	Report(err)
}

// Recover reports a panic in the deferring function and stops it.
//
//	defer errors.Recover("scheduler.task")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: CaptureStack(),
		})
	}
}

// CaptureStack returns the stack of its caller's caller, one frame per
// "function\n\tfile:line" pair.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for n > 0 {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}
