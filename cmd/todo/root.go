package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/nanotodo/config"
	"github.com/arthur-debert/nanotodo/internal/logging"
	"github.com/arthur-debert/nanotodo/registry"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	file     string
	memory   bool
	verbose  bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "A simple command-line task manager",
		Long: `Todo is a simple command-line task manager.

Manage your tasks from the command line. Tasks are stored in a JSON file
and persist across sessions.

Storage location:
  Default: ~/.todo/tasks.json
  Custom:  set TODO_FILE or pass --file

Examples:
  todo add "Buy groceries"
  todo add "Call dentist" -d "Schedule annual checkup"
  todo list
  todo complete 1
  todo export --format yaml`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.SetVersionTemplate("todo version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Path to the task store (overrides TODO_FILE)")
	rootCmd.PersistentFlags().BoolVar(&opts.memory, "memory", false, "Keep tasks in memory only; nothing is read or written")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Diagnostics level: debug, info, warn, error")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newStatusCmd(opts, statusComplete),
		newStatusCmd(opts, statusIncomplete),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// openRegistry builds a Registry from config, with flags taking precedence
func (o *globalOptions) openRegistry(cmd *cobra.Command) (*registry.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	logOpts := logging.DefaultOptions()
	logOpts.Level = logging.ParseLevel(level)
	logger := logging.New(cmd.ErrOrStderr(), logOpts)

	regOpts := []registry.Option{registry.WithLogger(logger)}
	switch {
	case o.memory || cfg.Memory:
		regOpts = append(regOpts, registry.InMemory())
	case o.file != "":
		path, err := config.ExpandHome(o.file)
		if err != nil {
			return nil, err
		}
		regOpts = append(regOpts, registry.WithPath(path))
	default:
		regOpts = append(regOpts, registry.WithPath(cfg.File))
	}

	reg, err := registry.New(regOpts...)
	if err != nil {
		return nil, err
	}

	if o.verbose {
		if reg.Path() == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Using in-memory task store")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using task store: %s\n", reg.Path())
		}
		if cfg.ConfigFile != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.ConfigFile)
		}
	}

	return reg, nil
}

// parseID converts a command argument into a task ID
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid task ID %q", arg)
	}
	return id, nil
}
