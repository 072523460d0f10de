package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arthur-debert/nanotodo/types"
)

// errNothingToUpdate is printed verbatim after "Error: ", hence the capital.
var errNothingToUpdate = errors.New("Provide --title and/or --description to update")

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task's title and/or description",
		Long: `Update a task's title and/or description by its ID.

At least one of --title or --description must be given. Passing an
empty --description clears it. The status is never changed.

Examples:
  todo update 1 --title "Buy organic groceries"
  todo update 1 -d "From the farmers market"
  todo update 1 -t "New title" -d "New description"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.UpdateRequest{
				Title:       changedString(cmd.Flags(), "title", title),
				Description: changedString(cmd.Flags(), "description", description),
			}
			if req.IsEmpty() {
				return errNothingToUpdate
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			reg, err := opts.openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			task, err := reg.Update(id, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Task %d updated\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title (1-500 characters)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description (max 2000 characters)")
	return cmd
}

// changedString returns a pointer to value when the flag was set on the
// command line, so an explicit empty string is distinguishable from absent.
func changedString(flags *pflag.FlagSet, name, value string) *string {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}
