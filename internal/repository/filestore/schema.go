package filestore

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "tracker/filestore/document.json"

var documentSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("filestore: add schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// validateDocument checks raw file contents against the document schema
// before they are decoded into entities.
func validateDocument(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("parse store file: %w", err)
	}
	if err := documentSchema.Validate(value); err != nil {
		return fmt.Errorf("invalid store file: %w", err)
	}
	return nil
}
