// Package cmd implements the lifecycle CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (demo, tree, config, version).
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name        string
	Short       string
	Long        string
	Usage       string
	Run         func(args []string) error
	SubCommands []*Command
}

// globals holds the flags accepted before or after any command.
type globals struct {
	configPath string
	strict     bool
	verbose    bool
}

var (
	rootCmd = &Command{
		Name:  "lifecycle",
		Short: "lifecycle - true mount and unmount hooks for Go components",
		Long: `lifecycle demonstrates mount and unmount hooks that survive strict
mode's diagnostic remounts. Run a scenario with and without --strict to
see which hooks observe the extra cycle.

Use "lifecycle <command> --help" for more information about a command.`,
		Usage: "lifecycle <command> [flags]",
	}

	// Commands registered with the CLI.
	commands = make(map[string]*Command)

	flags globals

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return execute(os.Args[1:])
}

func execute(args []string) error {
	flags = globals{}

	// Handle no arguments
	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Handle global flags and extract --config
	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp(rootCmd)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version":
			if len(filteredArgs) == 0 {
				printVersion()
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--strict":
			flags.strict = true
		case "--verbose":
			flags.verbose = true
		case "--config":
			if i+1 < len(args) {
				flags.configPath = args[i+1]
				i++
			} else {
				return fmt.Errorf("--config requires a file path")
			}
		default:
			if strings.HasPrefix(arg, "--config=") {
				flags.configPath = strings.TrimPrefix(arg, "--config=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp(rootCmd)
		return nil
	}

	// Find and execute the command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp(rootCmd)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	// Check for help flag on subcommand
	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

func printVersion() {
	fmt.Fprintf(stdout, "lifecycle version %s (built %s)\n", Version, BuildTime)
}

func printHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Commands:")
	for _, sub := range cmd.SubCommands {
		fmt.Fprintf(stdout, "  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Flags:")
	fmt.Fprintln(stdout, "  -h, --help           Show help for a command")
	fmt.Fprintln(stdout, "  -v, --version        Show version information")
	fmt.Fprintln(stdout, "  --config FILE        Use FILE instead of lifecycle.yaml / lifecycle.toml")
	fmt.Fprintln(stdout, "  --strict             Run the diagnostic mount cycle on every first mount")
	fmt.Fprintln(stdout, "  --verbose            Debug logging and stack traces for contained errors")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Environment:")
	fmt.Fprintln(stdout, "  LIFECYCLE_LOG_LEVEL     Log level override (trace, debug, info, warn, error, off)")
	fmt.Fprintln(stdout, "  LIFECYCLE_LOG_NOCOLOR   Disable colored log output")
	fmt.Fprintln(stdout, "  LIFECYCLE_LOG_JSON      Log JSON lines instead of console output")
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Examples:")
	fmt.Fprintln(stdout, "  lifecycle demo admin            Toggle a dashboard, plain vs true unmount")
	fmt.Fprintln(stdout, "  lifecycle demo fetch --strict   One request per genuine mount")
	fmt.Fprintln(stdout, "  lifecycle tree autosave         Show the autosave form's element tree")
}

func printCommandHelp(cmd *Command) {
	fmt.Fprintln(stdout, cmd.Long)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "Usage:")
	fmt.Fprintf(stdout, "  %s\n", cmd.Usage)
}
