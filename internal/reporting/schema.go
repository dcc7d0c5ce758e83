package reporting

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/artifact.schema.json
var artifactSchemaJSON []byte

const artifactSchemaURL = "https://congress-trade-lab.local/schemas/artifact.schema.json"

var (
	schemaOnce     sync.Once
	artifactSchema *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(artifactSchemaURL, bytes.NewReader(artifactSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("artifact schema load failed: %w", err)
			return
		}
		artifactSchema, schemaErr = c.Compile(artifactSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("artifact schema compile failed: %w", schemaErr)
		}
	})
	return artifactSchema, schemaErr
}

// ArtifactSchema returns the embedded JSON schema document.
func ArtifactSchema() []byte {
	out := make([]byte, len(artifactSchemaJSON))
	copy(out, artifactSchemaJSON)
	return out
}

// ValidateArtifact checks encoded artifact JSON against the embedded schema.
func ValidateArtifact(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("artifact schema validation failed: %w", err)
	}
	return nil
}
