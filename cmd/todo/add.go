package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Long: `Add a new task with the given title.

The task is assigned the next unused ID and starts as incomplete.
Titles are trimmed and must be 1-500 characters; descriptions may be
up to 2000 characters and span several lines.

Examples:
  todo add "Buy groceries"
  todo add "Call dentist" -d "Schedule annual checkup"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			task, err := reg.Add(args[0], description)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %d added: \"%s\"\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Optional description (max 2000 characters)")
	return cmd
}
