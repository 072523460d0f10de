package search

import "github.com/arthur-debert/nanotodo/types"

// Field names a searchable task field
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// AllFields is searched when Options.Fields is empty
var AllFields = []Field{FieldTitle, FieldDescription}

// Options configures search behavior
type Options struct {
	// Query is the text to look for
	Query string

	// Fields limits which fields are searched. Empty searches all.
	Fields []Field

	// CaseSensitive controls whether search is case-sensitive
	CaseSensitive bool

	// ExactMatch requires the entire field to match the query
	ExactMatch bool

	// Status, when set, drops tasks in any other state
	Status *types.Status

	// MaxResults limits the number of results. Zero means no limit.
	MaxResults int
}

// Span is a byte range [Start, End) of a match within a field value
type Span struct {
	Start int
	End   int
}

// Result is a matched task with its relevance
type Result struct {
	Task types.Task

	// Score is in (0, 1], higher is better
	Score float64

	// MatchType describes the best match found
	MatchType MatchType

	// MatchedFields lists the fields that matched, in search order
	MatchedFields []Field

	// Matches holds the match positions per field
	Matches map[Field][]Span
}

// MatchType indicates where and how a match was found
type MatchType string

const (
	MatchExactTitle         MatchType = "exact_title"
	MatchPartialTitle       MatchType = "partial_title"
	MatchExactDescription   MatchType = "exact_description"
	MatchPartialDescription MatchType = "partial_description"
)

// TaskSource supplies the tasks to search. *registry.Registry satisfies it.
type TaskSource interface {
	ListAll() []types.Task
}
