package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/nanotodo/types"
)

// taskList is the top-level shape of the structured formats. TOML needs
// a table at the root, so all three share it.
type taskList struct {
	Tasks []types.Task `json:"tasks" yaml:"tasks" toml:"tasks"`
}

func (l taskList) normalized() []types.Task {
	if l.Tasks == nil {
		return []types.Task{}
	}
	return l.Tasks
}

// JSON writes {"tasks": [...]} with two-space indentation
var JSON = &Format{
	Name:      "json",
	Extension: ".json",
	Encode: func(w io.Writer, tasks []types.Task) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(taskList{Tasks: tasks})
	},
	Decode: func(data []byte) ([]types.Task, error) {
		var list taskList
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&list); err != nil {
			return nil, err
		}
		return list.normalized(), nil
	},
}

// YAML writes a "tasks" sequence
var YAML = &Format{
	Name:      "yaml",
	Extension: ".yaml",
	Encode: func(w io.Writer, tasks []types.Task) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(taskList{Tasks: tasks}); err != nil {
			return err
		}
		return enc.Close()
	},
	Decode: func(data []byte) ([]types.Task, error) {
		var list taskList
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list.normalized(), nil
	},
}

// TOML writes one [[tasks]] table per task
var TOML = &Format{
	Name:      "toml",
	Extension: ".toml",
	Encode: func(w io.Writer, tasks []types.Task) error {
		return toml.NewEncoder(w).Encode(taskList{Tasks: tasks})
	},
	Decode: func(data []byte) ([]types.Task, error) {
		var list taskList
		if _, err := toml.Decode(string(data), &list); err != nil {
			return nil, err
		}
		return list.normalized(), nil
	},
}

func init() {
	mustRegister(JSON)
	mustRegister(YAML)
	mustRegister(TOML)
}
