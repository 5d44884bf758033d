package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const entrySchemaURL = "schema://question-entry.json"

// entrySchemaJSON lists the fields an entry needs to be counted. Optional
// fields are not constrained here; malformed ones are ignored.
const entrySchemaJSON = `{
  "type": "object",
  "required": ["subject", "chapter", "difficulty", "isCorrect"],
  "properties": {
    "subject":          {"type": "string", "pattern": "\\S"},
    "chapter":          {"type": "string", "pattern": "\\S"},
    "difficulty":       {"type": "string", "pattern": "\\S"},
    "isCorrect":        {"type": "boolean"},
    "timeTakenSeconds": {"type": "number", "minimum": 0}
  }
}`

var entrySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(entrySchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(entrySchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(entrySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
})

func validateEntry(entry map[string]any) error {
	schema, err := entrySchema()
	if err != nil {
		return fmt.Errorf("entry schema: %w", err)
	}
	if err := schema.Validate(entry); err != nil {
		return fmt.Errorf("invalid entry: %s", condense(err.Error()))
	}
	return nil
}

// condense folds a multi-line validation message onto one line.
func condense(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
