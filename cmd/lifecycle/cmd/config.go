package cmd

import (
	"fmt"
)

func init() {
	RegisterCommand(&Command{
		Name:  "config",
		Short: "Show the resolved configuration",
		Long: `Show the configuration the other commands would run with.

Configuration is read from lifecycle.yaml, or lifecycle.toml when there is
no YAML file, in the project root (the nearest directory with a go.mod).
Command-line flags override file values.`,
		Usage: "lifecycle config [--strict] [--verbose] [--config FILE]",
		Run:   runConfig,
	})
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Show the lifecycle CLI version.",
		Usage: "lifecycle version",
		Run: func(args []string) error {
			printVersion()
			return nil
		},
	})
}

func runConfig(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("config takes no arguments")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	source := cfg.Source
	if source == "" {
		source = "(defaults)"
	}
	module := cfg.ModulePath
	if module == "" {
		module = "(none)"
	}

	fmt.Fprintf(stdout, "root:           %s\n", cfg.Root)
	fmt.Fprintf(stdout, "source:         %s\n", source)
	fmt.Fprintf(stdout, "module:         %s\n", module)
	fmt.Fprintf(stdout, "app:            %s\n", cfg.AppName)
	fmt.Fprintf(stdout, "strict mode:    %t\n", cfg.StrictMode)
	fmt.Fprintf(stdout, "defer delay:    %s\n", cfg.DeferDelay)
	fmt.Fprintf(stdout, "log level:      %s\n", cfg.LogLevel)
	fmt.Fprintf(stdout, "verbose:        %t\n", cfg.Verbose)
	fmt.Fprintf(stdout, "metrics prefix: %s\n", cfg.MetricsPrefix)
	return nil
}
