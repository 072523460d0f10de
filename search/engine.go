// Package search finds tasks by title and description text and ranks
// them by relevance.
package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/arthur-debert/nanotodo/types"
)

// Engine searches the tasks of a TaskSource
type Engine struct {
	source TaskSource
}

// NewEngine creates a search engine over source
func NewEngine(source TaskSource) *Engine {
	return &Engine{source: source}
}

// Search returns the tasks matching options, best match first. Ties keep
// ascending ID order. An empty query matches nothing.
func (e *Engine) Search(options Options) ([]Result, error) {
	fields := options.Fields
	if len(fields) == 0 {
		fields = AllFields
	}
	for _, field := range fields {
		if field != FieldTitle && field != FieldDescription {
			return nil, fmt.Errorf("unknown search field %q", field)
		}
	}

	results := []Result{}
	if options.Query == "" {
		return results, nil
	}

	for _, task := range FilterByStatus(e.source.ListAll(), options.Status) {
		if result := searchTask(task, fields, options); result != nil {
			results = append(results, *result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if options.MaxResults > 0 && len(results) > options.MaxResults {
		results = results[:options.MaxResults]
	}

	return results, nil
}

// FilterByStatus returns the tasks with the given status, or all of them
// when status is nil
func FilterByStatus(tasks []types.Task, status *types.Status) []types.Task {
	if status == nil {
		return tasks
	}
	filtered := []types.Task{}
	for _, task := range tasks {
		if task.Status == *status {
			filtered = append(filtered, task)
		}
	}
	return filtered
}

func searchTask(task types.Task, fields []Field, options Options) *Result {
	var result *Result

	for _, field := range fields {
		value := fieldValue(task, field)
		spans := findMatches(value, options.Query, options)
		if len(spans) == 0 {
			continue
		}

		if result == nil {
			result = &Result{Task: task, Matches: make(map[Field][]Span)}
		}
		result.MatchedFields = append(result.MatchedFields, field)
		result.Matches[field] = spans

		score := 1.0
		if !options.ExactMatch {
			score = calculateScore(value, options.Query, field, spans)
		}
		if score > result.Score {
			result.Score = score
			result.MatchType = matchType(field, options.ExactMatch)
		}
	}

	return result
}

func fieldValue(task types.Task, field Field) string {
	if field == FieldTitle {
		return task.Title
	}
	return task.Description
}

func matchType(field Field, exact bool) MatchType {
	switch {
	case field == FieldTitle && exact:
		return MatchExactTitle
	case field == FieldTitle:
		return MatchPartialTitle
	case exact:
		return MatchExactDescription
	default:
		return MatchPartialDescription
	}
}

// calculateScore computes a relevance score for a partial match
func calculateScore(value, query string, field Field, spans []Span) float64 {
	score := 0.5
	if field == FieldTitle {
		score = 0.8
	}

	// Same case as typed
	if strings.Contains(value, query) {
		score += 0.2
	}

	if spans[0].Start == 0 {
		score += 0.2
	}

	// Query covers most of the field
	if float64(utf8.RuneCountInString(query))/float64(utf8.RuneCountInString(value)) > 0.5 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// findMatches returns the non-overlapping occurrences of query in text.
// Comparison is rune-wise so case folding never splits a character.
func findMatches(text, query string, options Options) []Span {
	if query == "" {
		return nil
	}

	if options.ExactMatch {
		if equal(text, query, options.CaseSensitive) {
			return []Span{{Start: 0, End: len(text)}}
		}
		return nil
	}

	// offsets[i] is the byte offset of rune i; the last entry is len(text)
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))

	width := utf8.RuneCountInString(query)
	var spans []Span
	for i := 0; i+width < len(offsets); {
		start, end := offsets[i], offsets[i+width]
		if equal(text[start:end], query, options.CaseSensitive) {
			spans = append(spans, Span{Start: start, End: end})
			i += width
			continue
		}
		i++
	}
	return spans
}

func equal(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}
