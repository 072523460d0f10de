package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Long: `Delete a task by its ID.

This is permanent. The ID of a deleted task is never reused.

Examples:
  todo delete 1`,
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

			if err := reg.Delete(id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %d deleted\n", id)
			return nil
		},
	}
}
