package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/nanotodo/export"
	"github.com/arthur-debert/nanotodo/types"
)

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		exportFormat string
		exportOutput string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all tasks as JSON, YAML, TOML or Markdown",
		Long: fmt.Sprintf(`Export all tasks in a portable format.

Without --output the result is written to stdout. With --output and no
--format, the format is taken from the file extension.

Examples:
  todo export                        # JSON to stdout
  todo export --format yaml
  todo export -o backup.toml         # format inferred from extension
  todo export --format markdown -o TODO.md

Available formats: %s`, strings.Join(export.List(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatName := exportFormat
			if !cmd.Flags().Changed("format") && exportOutput != "" {
				format, err := export.ForPath(exportOutput)
				if err != nil {
					return err
				}
				formatName = format.Name
			}
			if _, err := export.Get(formatName); err != nil {
				return err
			}

			reg, err := opts.openRegistry(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = reg.Close() }()

			tasks := reg.ListAll()

			if exportOutput == "" {
				return export.Write(cmd.OutOrStdout(), formatName, tasks)
			}

			if err := writeExportFile(exportOutput, formatName, tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), exportOutput)
			return nil
		},
	}

	cmd.Flags().StringVar(&exportFormat, "format", "json", "Output format ("+strings.Join(export.List(), ", ")+")")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

// writeExportFile encodes tasks into path, creating parent directories
func writeExportFile(path, formatName string, tasks []types.Task) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return export.Write(f, formatName, tasks)
}
