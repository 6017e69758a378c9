package cmd

import (
	"context"
	"fmt"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/demo"
	drifttest "github.com/go-drift/lifecycle/pkg/testing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tree",
		Short: "Print a scenario's element tree",
		Long: `Run a scenario on a virtual clock and print its element tree, with the
hooks each state registers.

Scenarios:
` + scenarioList(),
		Usage: "lifecycle tree <scenario> [--strict] [--config FILE]",
		Run:   runTree,
	})
}

func runTree(args []string) error {
	s, err := lookupScenario(args)
	if err != nil {
		return err
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.restore()

	res, err := s.Run(context.Background(), demo.Options{
		Strict:     e.cfg.StrictMode,
		DeferDelay: e.cfg.DeferDelay,
		Clock:      drifttest.NewFakeClock(),
		Logger:     e.logger,
		Metrics:    e.metrics,
	})
	if err != nil {
		return fmt.Errorf("run %s: %w", s.Name, err)
	}
	if res.Tree == nil {
		return fmt.Errorf("scenario %s mounted nothing", s.Name)
	}
	fmt.Fprintln(stdout, res.Tree.Draw())
	return nil
}
