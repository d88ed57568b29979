package reftable

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/onec-tools/invoice-recon/constants"
)

// BuildRowJSONSchema returns the JSON-Schema (draft 2020-12 subset) every
// reference row must satisfy: all four field slots present as strings. This
// is the eager shape check guarding the join inputs.
func BuildRowJSONSchema() map[string]any {
	props := map[string]any{}
	required := make([]string, 0, len(constants.Fields))
	for _, f := range constants.Fields {
		props[string(f)] = map[string]any{"type": "string"}
		required = append(required, string(f))
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

var rowSchema = mustCompile(BuildRowJSONSchema())

// ValidateRow validates one projected row object against the row schema.
func ValidateRow(obj map[string]any) error {
	if err := rowSchema.Validate(obj); err != nil {
		return fmt.Errorf("row does not match schema: %w", err)
	}
	return nil
}

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}
