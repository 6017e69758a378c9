package testing

import (
	"sync"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// ErrorRecorder is an errors.ErrorHandler that keeps everything reported to
// it. It is safe for concurrent use, so it also captures failures of
// unmount actions run with lifecycle.Async.
type ErrorRecorder struct {
	mu          sync.Mutex
	errs        []*errors.LifecycleError
	panics      []*errors.PanicError
	buildErrors []*errors.BuildError
}

// NewErrorRecorder returns an empty recorder.
func NewErrorRecorder() *ErrorRecorder {
	return &ErrorRecorder{}
}

// Install makes r the global error handler and returns a function that
// restores the previous one:
//
//	defer rec.Install()()
func (r *ErrorRecorder) Install() (restore func()) {
	prev := errors.CurrentHandler()
	errors.SetHandler(r)
	return func() { errors.SetHandler(prev) }
}

// HandleError records a lifecycle error.
func (r *ErrorRecorder) HandleError(err *errors.LifecycleError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// HandlePanic records a recovered panic.
func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panics = append(r.panics, err)
}

// HandleBuildError records a build failure.
func (r *ErrorRecorder) HandleBuildError(err *errors.BuildError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildErrors = append(r.buildErrors, err)
}

// Errors returns the recorded lifecycle errors in report order.
func (r *ErrorRecorder) Errors() []*errors.LifecycleError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.LifecycleError(nil), r.errs...)
}

// Panics returns the recorded panics in report order.
func (r *ErrorRecorder) Panics() []*errors.PanicError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.PanicError(nil), r.panics...)
}

// BuildErrors returns the recorded build errors in report order.
func (r *ErrorRecorder) BuildErrors() []*errors.BuildError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*errors.BuildError(nil), r.buildErrors...)
}

// Len returns the total number of reports of any type.
func (r *ErrorRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs) + len(r.panics) + len(r.buildErrors)
}

// Reset drops everything recorded so far.
func (r *ErrorRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
	r.panics = nil
	r.buildErrors = nil
}
