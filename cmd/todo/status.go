package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/nanotodo/registry"
	"github.com/arthur-debert/nanotodo/types"
)

type statusChange struct {
	name  string
	apply func(*registry.Registry, int) (types.Task, error)
}

var (
	statusComplete = statusChange{
		name:  "complete",
		apply: (*registry.Registry).MarkComplete,
	}
	statusIncomplete = statusChange{
		name:  "incomplete",
		apply: (*registry.Registry).MarkIncomplete,
	}
)

// newStatusCmd builds the complete and incomplete commands
func newStatusCmd(opts *globalOptions, change statusChange) *cobra.Command {
	return &cobra.Command{
		Use:   change.name + " <id>",
		Short: "Mark a task as " + change.name,
		Long: fmt.Sprintf(`Mark a task as %s by its ID.

Marking a task that is already %s succeeds and changes nothing.

Examples:
  todo %s 1`, change.name, change.name, change.name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			reg, err := opts.openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			task, err := change.apply(reg, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %d marked as %s\n", task.ID, task.Status)
			return nil
		},
	}
}
