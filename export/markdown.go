package export

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/arthur-debert/nanotodo/types"
)

// markdownItemRegex matches a checklist item line: "- [x] #12 Title"
var markdownItemRegex = regexp.MustCompile(`^- \[([ xX])\] #(\d+) (.*)$`)

const markdownIndent = "  "

// Markdown renders a GitHub-style checklist under a "# Tasks" heading.
// Each description line follows its item indented by two spaces.
// Titles are expected to be single-line for the result to parse back.
var Markdown = &Format{
	Name:      "markdown",
	Extension: ".md",
	Encode: func(w io.Writer, tasks []types.Task) error {
		bw := bufio.NewWriter(w)
		fmt.Fprintln(bw, "# Tasks")
		fmt.Fprintln(bw)
		for _, task := range tasks {
			check := " "
			if task.IsComplete() {
				check = "x"
			}
			fmt.Fprintf(bw, "- [%s] #%d %s\n", check, task.ID, task.Title)
			if task.Description == "" {
				continue
			}
			for _, line := range strings.Split(task.Description, "\n") {
				fmt.Fprintln(bw, markdownIndent+line)
			}
		}
		return bw.Flush()
	},
	Decode: func(data []byte) ([]types.Task, error) {
		tasks := []types.Task{}
		var current *types.Task
		var description []string

		flush := func() {
			if current == nil {
				return
			}
			current.Description = strings.Join(description, "\n")
			tasks = append(tasks, *current)
			current = nil
			description = nil
		}

		scanner := bufio.NewScanner(bytes.NewReader(data))
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()

			if matches := markdownItemRegex.FindStringSubmatch(line); matches != nil {
				flush()
				id, err := strconv.Atoi(matches[2])
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid task id %q", lineNo, matches[2])
				}
				status := types.StatusIncomplete
				if matches[1] != " " {
					status = types.StatusComplete
				}
				current = &types.Task{ID: id, Title: matches[3], Status: status}
				continue
			}

			if current != nil && strings.HasPrefix(line, markdownIndent) {
				description = append(description, strings.TrimPrefix(line, markdownIndent))
				continue
			}

			// Headings and blank lines end the current item
			flush()
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		flush()
		return tasks, nil
	},
}

func init() {
	mustRegister(Markdown)
}
