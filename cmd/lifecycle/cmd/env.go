package cmd

import (
	"github.com/rs/zerolog"
	"github.com/uber-go/tally/v4"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/config"
	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/logging"
	"github.com/go-drift/lifecycle/pkg/errors"
)

// env is the resolved state shared by commands that run scenarios.
type env struct {
	cfg     *config.Resolved
	logger  zerolog.Logger
	metrics tally.TestScope
	restore func()
}

// loadConfig resolves the project config and applies command-line flags.
func loadConfig() (*config.Resolved, error) {
	root, err := config.FindProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(root, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.strict {
		cfg.StrictMode = true
	}
	if flags.verbose {
		cfg.Verbose = true
		if cfg.LogLevel > zerolog.DebugLevel {
			cfg.LogLevel = zerolog.DebugLevel
		}
	}
	return cfg, nil
}

// setup loads config, builds the logger and installs it as the lifecycle
// error handler. Call restore when done.
func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig(logging.ProfileRuntime)
	logCfg.Level = cfg.LogLevel
	logCfg.Out = stderr
	logger := logging.New(cfg.AppName, logCfg)

	prev := errors.CurrentHandler()
	errors.SetHandler(errors.NewZerologHandler(logger, cfg.Verbose))

	return &env{
		cfg:     cfg,
		logger:  logger,
		metrics: tally.NewTestScope(cfg.MetricsPrefix, nil),
		restore: func() { errors.SetHandler(prev) },
	}, nil
}
