package errors

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination. Defaults to os.Stderr.
	Out io.Writer
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleError logs a LifecycleError.
func (h *LogHandler) HandleError(err *LifecycleError) {
	if err == nil {
		return
	}
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "[lifecycle error] %s [%s]", err.Op, err.Kind)
		if err.Component != "" {
			fmt.Fprintf(w, " component=%s", err.Component)
		}
		if err.Recovered != nil {
			fmt.Fprintf(w, ": panic: %v\n", err.Recovered)
		} else {
			fmt.Fprintf(w, ": %v\n", err.Err)
		}
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
		return
	}
	if err.Recovered != nil {
		fmt.Fprintf(w, "[lifecycle error] %s: panic: %v\n", err.Op, err.Recovered)
	} else {
		fmt.Fprintf(w, "[lifecycle error] %s: %v\n", err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "[lifecycle panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "[lifecycle panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	w := h.out()
	fmt.Fprintf(w, "[lifecycle build error] %s\n", err.Error())
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// ZerologHandler is an ErrorHandler that writes structured events to a
// zerolog.Logger.
type ZerologHandler struct {
	Logger zerolog.Logger
	// Verbose attaches stack traces to every event.
	Verbose bool
}

// NewZerologHandler wraps logger.
func NewZerologHandler(logger zerolog.Logger, verbose bool) *ZerologHandler {
	return &ZerologHandler{Logger: logger, Verbose: verbose}
}

// HandleError logs a LifecycleError at error level.
func (h *ZerologHandler) HandleError(err *LifecycleError) {
	if err == nil {
		return
	}
	ev := h.Logger.Error().
		Str("op", err.Op).
		Str("kind", err.Kind.String()).
		Time("at", err.Timestamp)
	if err.Component != "" {
		ev = ev.Str("component", err.Component)
	}
	if err.Recovered != nil {
		ev = ev.Interface("panic", err.Recovered)
	} else {
		ev = ev.Err(err.Err)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("lifecycle action failed")
}

// HandlePanic logs a PanicError at error level.
func (h *ZerologHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.Logger.Error().Str("op", err.Op).Interface("panic", err.Value)
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("recovered panic")
}

// HandleBuildError logs a BuildError at error level.
func (h *ZerologHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	ev := h.Logger.Error().
		Str("component", err.Component).
		Str("element", err.Element)
	if err.Recovered != nil {
		ev = ev.Interface("panic", err.Recovered)
	} else {
		ev = ev.Err(err.Err)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("build failed")
}
