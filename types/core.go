package types

import (
	"fmt"
)

// Status is the completion state of a task.
type Status int

const (
	// StatusIncomplete is the default state of a newly added task.
	StatusIncomplete Status = iota
	// StatusComplete marks a task as done.
	StatusComplete
)

// String returns the stable wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusIncomplete:
		return "incomplete"
	case StatusComplete:
		return "complete"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus converts a wire name back into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "incomplete":
		return StatusIncomplete, nil
	case "complete":
		return StatusComplete, nil
	default:
		return StatusIncomplete, fmt.Errorf("unknown status %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusIncomplete, StatusComplete:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("cannot encode invalid status %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task is a single to-do item.
type Task struct {
	ID          int    `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Description string `json:"description" yaml:"description" toml:"description"`
	Status      Status `json:"status" yaml:"status" toml:"status"`
}

// IsComplete reports whether the task has been marked complete
func (t Task) IsComplete() bool {
	return t.Status == StatusComplete
}

// String returns a short human-readable form, e.g. `Task 1: Buy milk [incomplete]`.
func (t Task) String() string {
	return fmt.Sprintf("Task %d: %s [%s]", t.ID, t.Title, t.Status)
}

// Document is the persisted representation of a task collection.
// NextID is the counter the registry allocates from; it is never
// lowered, so IDs of deleted tasks are not reissued.
type Document struct {
	NextID int    `json:"next_id"`
	Tasks  []Task `json:"tasks"`
}

// EmptyDocument returns the canonical document of a store with no history.
func EmptyDocument() *Document {
	return &Document{
		NextID: 1,
		Tasks:  []Task{},
	}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	tasks := make([]Task, len(d.Tasks))
	copy(tasks, d.Tasks)
	return &Document{NextID: d.NextID, Tasks: tasks}
}

// UpdateRequest specifies fields to update on a task.
// A nil field is left untouched.
type UpdateRequest struct {
	Title       *string
	Description *string
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil
}
