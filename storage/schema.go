package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/arthur-debert/nanotodo/types"
)

// documentSchema describes the shape a store file must have before it is
// decoded. Cross-field consistency (unique IDs, next_id above every ID)
// is the registry's concern, not the schema's.
const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["next_id", "tasks"],
  "properties": {
    "next_id": {"type": "integer"},
    "tasks": {
      "type": "array",
      "items": {"$ref": "#/$defs/task"}
    }
  },
  "$defs": {
    "task": {
      "type": "object",
      "required": ["id", "title", "status"],
      "properties": {
        "id": {"type": "integer"},
        "title": {"type": "string"},
        "description": {"type": "string"},
        "status": {"enum": ["incomplete", "complete"]}
      }
    }
  }
}`

const documentSchemaURL = "document.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(documentSchemaURL, bytes.NewReader([]byte(documentSchema))); err != nil {
			schemaErr = fmt.Errorf("invalid document schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(documentSchemaURL)
	})
	return compiledSchema, schemaErr
}

// decodeDocument parses raw file content into a Document. It fails on
// invalid syntax, missing required fields and fields of the wrong type.
func decodeDocument(data []byte) (*types.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("file is empty")
	}

	// Numbers stay json.Number so the schema can tell 2 from 2.5
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: trailing data after document")
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("unexpected document structure: %w", err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = []types.Task{}
	}
	return &doc, nil
}
