package search

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/nanotodo/types"
)

// mockSource implements TaskSource for testing
type mockSource []types.Task

func (m mockSource) ListAll() []types.Task {
	return m
}

func sampleTasks() mockSource {
	return mockSource{
		{ID: 1, Title: "Important Meeting", Description: "Discuss quarterly budget and planning", Status: types.StatusIncomplete},
		{ID: 2, Title: "Budget Review", Description: "Review the meeting notes from last quarter", Status: types.StatusComplete},
		{ID: 3, Title: "Team Standup", Description: "Daily standup meeting for development team", Status: types.StatusComplete},
		{ID: 4, Title: "MEETING", Description: "All caps meeting title for testing", Status: types.StatusIncomplete},
		{ID: 5, Title: "Café ☕ ÉTÉ", Description: "", Status: types.StatusIncomplete},
	}
}

func resultIDs(results []Result) []int {
	ids := make([]int, len(results))
	for i, r := range results {
		ids[i] = r.Task.ID
	}
	return ids
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	results, err := NewEngine(sampleTasks()).Search(Options{Query: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("Expected empty results for empty query, got %v", results)
	}
}

func TestEngine_Search_UnknownField(t *testing.T) {
	_, err := NewEngine(sampleTasks()).Search(Options{Query: "x", Fields: []Field{"body"}})
	if err == nil || !strings.Contains(err.Error(), `unknown search field "body"`) {
		t.Errorf("Expected unknown field error, got %v", err)
	}
}

func TestEngine_Search_CaseSensitive(t *testing.T) {
	results, err := NewEngine(sampleTasks()).Search(Options{
		Query:         "meeting",
		CaseSensitive: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Lowercase "meeting" only appears in descriptions 2, 3 and 4
	got := resultIDs(results)
	want := []int{2, 3, 4}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result IDs mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Search_CaseInsensitive(t *testing.T) {
	results, err := NewEngine(sampleTasks()).Search(Options{Query: "meeting"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 results, got %v", resultIDs(results))
	}

	// Title matches outrank description-only matches
	for _, r := range results[:2] {
		if r.MatchType != MatchPartialTitle {
			t.Errorf("task %d: expected title match first, got %s", r.Task.ID, r.MatchType)
		}
	}
	for _, r := range results[2:] {
		if r.MatchType != MatchPartialDescription {
			t.Errorf("task %d: expected description match, got %s", r.Task.ID, r.MatchType)
		}
	}

	// "MEETING" is the whole title: prefix and coverage boosts
	if results[0].Task.ID != 4 || results[0].Score != 1.0 {
		t.Errorf("Expected task 4 with score 1.0 first, got task %d with %.2f", results[0].Task.ID, results[0].Score)
	}
}

func TestEngine_Search_Unicode(t *testing.T) {
	engine := NewEngine(sampleTasks())

	results, err := engine.Search(Options{Query: "été", Fields: []Field{FieldTitle}})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Task.ID != 5 {
		t.Fatalf("Expected task 5, got %v", resultIDs(results))
	}

	title := results[0].Task.Title
	spans := results[0].Matches[FieldTitle]
	if len(spans) != 1 || title[spans[0].Start:spans[0].End] != "ÉTÉ" {
		t.Errorf("Expected span over ÉTÉ, got %v", spans)
	}

	results, err = engine.Search(Options{Query: "☕"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Task.ID != 5 {
		t.Errorf("Expected task 5 for emoji query, got %v", resultIDs(results))
	}
}

func TestEngine_Search_ExactMatch(t *testing.T) {
	results, err := NewEngine(sampleTasks()).Search(Options{Query: "meeting", ExactMatch: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Task.ID != 4 {
		t.Fatalf("Expected only task 4, got %v", resultIDs(results))
	}
	if results[0].MatchType != MatchExactTitle || results[0].Score != 1.0 {
		t.Errorf("Expected exact title match scoring 1.0, got %s %.2f", results[0].MatchType, results[0].Score)
	}
}

func TestEngine_Search_Fields(t *testing.T) {
	results, err := NewEngine(sampleTasks()).Search(Options{
		Query:  "budget",
		Fields: []Field{FieldDescription},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1}, resultIDs(results)); diff != "" {
		t.Errorf("result IDs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Field{FieldDescription}, results[0].MatchedFields); diff != "" {
		t.Errorf("matched fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Search_MultipleMatches(t *testing.T) {
	source := mockSource{{ID: 1, Title: "aaaa", Status: types.StatusIncomplete}}
	results, err := NewEngine(source).Search(Options{Query: "aa"})
	if err != nil {
		t.Fatal(err)
	}

	want := []Span{{Start: 0, End: 2}, {Start: 2, End: 4}}
	if diff := cmp.Diff(want, results[0].Matches[FieldTitle]); diff != "" {
		t.Errorf("non-overlapping spans mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_Search_StatusAndLimit(t *testing.T) {
	complete := types.StatusComplete
	engine := NewEngine(sampleTasks())

	results, err := engine.Search(Options{Query: "meeting", Status: &complete})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Task.Status != types.StatusComplete {
			t.Errorf("task %d should have been filtered out", r.Task.ID)
		}
	}
	if len(results) != 2 {
		t.Errorf("Expected 2 complete matches, got %v", resultIDs(results))
	}

	results, err = engine.Search(Options{Query: "meeting", MaxResults: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("Expected MaxResults to cap at 1, got %d", len(results))
	}
}

func TestFilterByStatus(t *testing.T) {
	tasks := sampleTasks()
	incomplete := types.StatusIncomplete

	if got := FilterByStatus(tasks, nil); len(got) != len(tasks) {
		t.Errorf("nil status should keep all tasks, got %d", len(got))
	}

	got := FilterByStatus(tasks, &incomplete)
	if diff := cmp.Diff([]int{1, 4, 5}, resultIDs(toResults(got))); diff != "" {
		t.Errorf("filtered IDs mismatch (-want +got):\n%s", diff)
	}
}

func toResults(tasks []types.Task) []Result {
	results := make([]Result, len(tasks))
	for i, task := range tasks {
		results[i] = Result{Task: task}
	}
	return results
}
