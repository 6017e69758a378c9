package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// File names searched by LoadOptional, in order.
const (
	YAMLFile = "lifecycle.yaml"
	TOMLFile = "lifecycle.toml"
)

// Config represents the optional lifecycle.yaml or lifecycle.toml file.
type Config struct {
	App     AppConfig     `yaml:"app" toml:"app"`
	Runtime RuntimeConfig `yaml:"runtime" toml:"runtime"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Metrics MetricsConfig `yaml:"metrics" toml:"metrics"`
}

// AppConfig contains application metadata.
type AppConfig struct {
	Name string `yaml:"name,omitempty" toml:"name,omitempty"`
}

// RuntimeConfig contains settings for the build owner and the scheduler.
type RuntimeConfig struct {
	StrictMode bool   `yaml:"strict_mode,omitempty" toml:"strict_mode,omitempty"`
	DeferDelay string `yaml:"defer_delay,omitempty" toml:"defer_delay,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level   string `yaml:"level,omitempty" toml:"level,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
}

// MetricsConfig contains the metrics scope settings.
type MetricsConfig struct {
	Prefix string `yaml:"prefix,omitempty" toml:"prefix,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root          string
	Source        string
	ModulePath    string
	AppName       string
	StrictMode    bool
	DeferDelay    time.Duration
	LogLevel      zerolog.Level
	Verbose       bool
	MetricsPrefix string
}

// LoadOptional reads lifecycle.yaml or, failing that, lifecycle.toml from
// dir. It returns an empty config and an empty source when neither exists.
func LoadOptional(dir string) (cfg *Config, source string, err error) {
	for _, name := range []string{YAMLFile, TOMLFile} {
		path := filepath.Join(dir, name)
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return &Config{}, "", nil
}

// Load reads a config file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml or .toml)", ext)
	}
	return &cfg, nil
}

// Resolve loads the config for dir and resolves defaults. A non-empty
// explicit path takes precedence over the files in dir.
func Resolve(dir, explicit string) (*Resolved, error) {
	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	var (
		cfg    *Config
		source string
	)
	if explicit != "" {
		cfg, err = Load(explicit)
		source = explicit
	} else {
		cfg, source, err = LoadOptional(dir)
	}
	if err != nil {
		return nil, err
	}

	appName := strings.TrimSpace(cfg.App.Name)
	if appName == "" {
		appName = defaultAppName(modulePath, dir)
	}

	var delay time.Duration
	if s := strings.TrimSpace(cfg.Runtime.DeferDelay); s != "" {
		delay, err = time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("runtime.defer_delay: %w", err)
		}
	}

	level := zerolog.InfoLevel
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		level, err = zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}

	prefix := strings.TrimSpace(cfg.Metrics.Prefix)
	if prefix == "" {
		prefix = sanitizePrefix(appName)
	}

	resolved := &Resolved{
		Root:          dir,
		Source:        source,
		ModulePath:    modulePath,
		AppName:       appName,
		StrictMode:    cfg.Runtime.StrictMode,
		DeferDelay:    delay,
		LogLevel:      level,
		Verbose:       cfg.Log.Verbose,
		MetricsPrefix: prefix,
	}
	if err := validate(resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// FindProjectRoot walks up from the current directory to find go.mod. It
// falls back to the current directory when there is none.
func FindProjectRoot() (string, error) {
	start, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// modulePath returns the module path declared in dir/go.mod, or "" when
// there is no go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("could not determine module path from go.mod")
	}
	if err := module.CheckImportPath(path); err != nil {
		return "", fmt.Errorf("invalid module path in go.mod: %w", err)
	}
	return path, nil
}

func defaultAppName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "lifecycle_app"
	}
	return base
}

// sanitizePrefix turns name into a metrics prefix: lower case letters,
// digits and underscores, starting with a letter.
func sanitizePrefix(name string) string {
	var out []rune
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == '-' || r == '.' || r == ' ':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "lifecycle"
	}
	if out[0] < 'a' || out[0] > 'z' {
		out = append([]rune{'m'}, out...)
	}
	return string(out)
}

func validate(r *Resolved) error {
	if r.DeferDelay < 0 {
		return fmt.Errorf("runtime.defer_delay must not be negative (got %s)", r.DeferDelay)
	}
	if r.DeferDelay > time.Second {
		return fmt.Errorf("runtime.defer_delay must be at most 1s (got %s)", r.DeferDelay)
	}
	if r.MetricsPrefix[0] < 'a' || r.MetricsPrefix[0] > 'z' {
		return fmt.Errorf("metrics.prefix must start with a lower case letter (%q)", r.MetricsPrefix)
	}
	for _, c := range r.MetricsPrefix {
		if !(c == '_' || c == '.' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9') {
			return fmt.Errorf("metrics.prefix contains invalid character %q in %q", c, r.MetricsPrefix)
		}
	}
	return nil
}
