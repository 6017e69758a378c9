package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/demo"
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run a lifecycle scenario in real time",
		Long: `Run a scripted scenario and print each lifecycle event as it happens.

Scenarios:
` + scenarioList() + `
Run the same scenario with --strict to see which hooks observe the
diagnostic mount cycle. A counter summary is printed at the end.`,
		Usage: "lifecycle demo <scenario> [--strict] [--config FILE]",
		Run:   runDemo,
	})
}

func scenarioList() string {
	var b strings.Builder
	for _, s := range demo.Scenarios() {
		fmt.Fprintf(&b, "  %-10s %s\n", s.Name, s.Short)
	}
	return b.String()
}

func lookupScenario(args []string) (demo.Scenario, error) {
	if len(args) != 1 {
		return demo.Scenario{}, fmt.Errorf("expected one scenario name, got %d arguments\n\nScenarios:\n%s", len(args), scenarioList())
	}
	s, ok := demo.Lookup(args[0])
	if !ok {
		return demo.Scenario{}, fmt.Errorf("unknown scenario %q\n\nScenarios:\n%s", args[0], scenarioList())
	}
	return s, nil
}

func runDemo(args []string) error {
	s, err := lookupScenario(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.restore()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode := "normal"
	if e.cfg.StrictMode {
		mode = "strict"
	}
	fmt.Fprintf(stdout, "%s (%s mode)\n\n", s.Name, mode)

	_, err = s.Run(ctx, demo.Options{
		Strict:     e.cfg.StrictMode,
		DeferDelay: e.cfg.DeferDelay,
		Logger:     e.logger,
		Metrics:    e.metrics,
		Out:        stdout,
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", s.Name, err)
	}

	printCounters(e.metrics.Snapshot())
	return nil
}

func printCounters(snap tally.Snapshot) {
	counters := snap.Counters()
	if len(counters) == 0 {
		return
	}
	names := make([]string, 0, len(counters))
	for _, c := range counters {
		names = append(names, c.Name())
	}
	sort.Strings(names)

	values := make(map[string]int64, len(counters))
	for _, c := range counters {
		values[c.Name()] = c.Value()
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Counters:")
	for _, name := range names {
		fmt.Fprintf(stdout, "  %-40s %d\n", name, values[name])
	}
}
