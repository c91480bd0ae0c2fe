package siteconfig

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/zoe-site.schema.json
var schemaDocument []byte

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func siteSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("zoe-site.schema.json", bytes.NewReader(schemaDocument)); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("zoe-site.schema.json")
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateDocument checks a raw configuration document against the embedded
// JSON schema.
func ValidateDocument(document map[string]any) error {
	schema, err := siteSchema()
	if err != nil {
		return fmt.Errorf("siteconfig: compile schema: %w", err)
	}

	// Round trip through JSON so YAML specific scalars (timestamps, ints)
	// reach the validator as JSON types.
	encoded, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := schema.Validate(instance); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return &SchemaError{Issues: collectIssues(verr)}
		}
		return &SchemaError{Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func collectIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(root)
	return issues
}
