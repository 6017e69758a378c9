// Package demo contains scripted scenarios that show the difference between
// plain and true lifecycle hooks, with and without strict mode.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/scheduler"
)

// Options configures a scenario run.
type Options struct {
	Strict     bool
	DeferDelay time.Duration
	// Clock drives the loop. Nil runs in real time. A clock with an
	// Advance(time.Duration) method is stepped instead of waited on.
	Clock   scheduler.Clock
	Logger  zerolog.Logger
	Metrics tally.Scope
	// Out receives one line per event. Nil discards them.
	Out io.Writer
}

// Result is what a run observed.
type Result struct {
	Events []string
	// Tree is the element tree after the step marked for it, or right
	// before the final step.
	Tree *TreeNode
}

// Scenario is a named script.
type Scenario struct {
	Name  string
	Short string
	build func(h *harness) (core.Component, []step)
}

type step struct {
	at   time.Duration
	name string
	do   func()
	// snapshot records Result.Tree after the step.
	snapshot bool
}

type advancer interface {
	Advance(time.Duration)
}

var scenarios = []Scenario{adminScenario, autosaveScenario, fetchScenario}

// Scenarios returns the available scenarios in display order.
func Scenarios() []Scenario {
	return slices.Clone(scenarios)
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

// Run mounts the scenario's root, plays its steps and returns once the last
// step and the deferred checks it caused have run.
func (s Scenario) Run(ctx context.Context, opts Options) (*Result, error) {
	loopOpts := []scheduler.Option{scheduler.WithDeferDelay(opts.DeferDelay)}
	if opts.Clock != nil {
		loopOpts = append(loopOpts, scheduler.WithClock(opts.Clock))
	}
	loop := scheduler.NewLoop(loopOpts...)

	owner := core.NewBuildOwner(loop)
	owner.StrictMode = opts.Strict
	owner.Metrics = opts.Metrics
	owner.OnNeedsBuild = func() {
		loop.ScheduleAfter(0, owner.FlushBuild)
	}

	h := &harness{
		loop:   loop,
		owner:  owner,
		out:    opts.Out,
		logger: opts.Logger.With().Str("scenario", s.Name).Logger(),
		start:  loop.Clock().Now(),
	}

	root, steps := s.build(h)
	if len(steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", s.Name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		element *core.StatefulElement
		result  = &Result{}
		done    bool
	)
	loop.ScheduleAfter(0, func() {
		h.logger.Debug().Bool("strict", opts.Strict).Msg("attaching root")
		element = owner.Attach(root)
	})
	for i, st := range steps {
		st := st // per-iteration copy; go.mod targets go1.21 loop semantics
		last := i == len(steps)-1
		loop.ScheduleAfter(st.at, func() {
			h.logger.Debug().Str("step", st.name).Msg("running step")
			if last && result.Tree == nil {
				result.Tree = Snapshot(element)
			}
			st.do()
			owner.FlushBuild()
			if st.snapshot {
				result.Tree = Snapshot(element)
			}
			if last {
				owner.Detach(element)
				// Runs after the checks the detach scheduled.
				loop.Schedule(func() {
					done = true
					cancel()
				})
			}
		})
	}

	if adv, ok := loop.Clock().(advancer); ok {
		for !done {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			loop.Flush()
			if done {
				break
			}
			due, ok := loop.NextDue()
			if !ok {
				return nil, errors.New("scheduler went idle before the scenario finished")
			}
			if d := due.Sub(loop.Clock().Now()); d > 0 {
				adv.Advance(d)
			}
		}
	} else if err := loop.Run(runCtx); err != nil && !done {
		return nil, err
	}

	result.Events = h.Events()
	return result, nil
}

// harness collects events for one run.
type harness struct {
	loop   *scheduler.Loop
	owner  *core.BuildOwner
	out    io.Writer
	logger zerolog.Logger
	start  time.Time

	mu     sync.Mutex
	events []string
}

func (h *harness) emit(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	elapsed := h.loop.Clock().Now().Sub(h.start)

	h.mu.Lock()
	h.events = append(h.events, msg)
	h.mu.Unlock()

	h.logger.Debug().Dur("at", elapsed).Msg(msg)
	if h.out != nil {
		fmt.Fprintf(h.out, "%8s  %s\n", elapsed.Round(time.Millisecond), msg)
	}
}

// Events returns the events emitted so far.
func (h *harness) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.events)
}
