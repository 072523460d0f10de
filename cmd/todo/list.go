package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/nanotodo/search"
	"github.com/arthur-debert/nanotodo/types"
)

const (
	idColumnWidth     = 4
	statusColumnWidth = 12
	titleColumnWidth  = 30

	// descriptionPreviewWidth is how much of a description the list shows
	descriptionPreviewWidth = 30
)

const (
	emptyListMessage = `No tasks found. Add a task with: todo add "Your task title"`
	noMatchesMessage = "No matching tasks."
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		searchText   string
		statusFilter string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Long: `List all tasks with their ID, status, title and description.

Tasks are shown in ascending ID order. Long descriptions are cut to
their first 30 columns. With --search, tasks whose title or description
contain the text are shown best match first.

Examples:
  todo list
  todo list --status incomplete
  todo list --search groceries`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var status *types.Status
			if statusFilter != "" {
				parsed, err := types.ParseStatus(statusFilter)
				if err != nil {
					return err
				}
				status = &parsed
			}

			reg, err := opts.openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			out := cmd.OutOrStdout()
			tasks := reg.ListAll()
			if len(tasks) == 0 {
				fmt.Fprintln(out, emptyListMessage)
				return nil
			}

			if searchText != "" {
				results, err := search.NewEngine(reg).Search(search.Options{Query: searchText, Status: status})
				if err != nil {
					return err
				}
				tasks = make([]types.Task, len(results))
				for i, result := range results {
					tasks[i] = result.Task
				}
			} else {
				tasks = search.FilterByStatus(tasks, status)
			}

			if len(tasks) == 0 {
				fmt.Fprintln(out, noMatchesMessage)
				return nil
			}
			printTaskTable(out, tasks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchText, "search", "s", "", "Only show tasks whose title or description contains this text")
	cmd.Flags().StringVar(&statusFilter, "status", "", "Only show tasks with this status (complete, incomplete)")
	return cmd
}

// printTaskTable writes tasks as aligned columns. The header is bold on
// a terminal and plain otherwise.
func printTaskTable(w io.Writer, tasks []types.Task) {
	header := lipgloss.NewRenderer(w).NewStyle().Bold(true)

	fmt.Fprintln(w, header.Render(formatRow("ID", "Status", "Title", "Description")))
	fmt.Fprintln(w, formatRow(
		"──",
		strings.Repeat("─", 10),
		strings.Repeat("─", titleColumnWidth),
		strings.Repeat("─", descriptionPreviewWidth),
	))

	for _, task := range tasks {
		fmt.Fprintln(w, formatRow(
			fmt.Sprint(task.ID),
			task.Status.String(),
			task.Title,
			previewDescription(task.Description),
		))
	}
}

func formatRow(id, status, title, description string) string {
	row := runewidth.FillRight(id, idColumnWidth) + " " +
		runewidth.FillRight(status, statusColumnWidth) + " " +
		runewidth.FillRight(title, titleColumnWidth) + " " +
		description
	return strings.TrimRight(row, " ")
}

// previewDescription flattens a description onto one line and cuts it
// to descriptionPreviewWidth columns, marking the cut with "...".
func previewDescription(description string) string {
	flat := strings.Join(strings.Fields(description), " ")
	if runewidth.StringWidth(flat) <= descriptionPreviewWidth {
		return flat
	}
	return runewidth.Truncate(flat, descriptionPreviewWidth, "") + "..."
}
