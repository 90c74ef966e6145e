// Where: internal/synth/validator.go
// What: Schema validation for synthesized templates.
// Why: Check the rendered document independently of the graph model that produced it.
package synth

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/photo-album/eda-app/internal/stack"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const schemaURL = "template.schema.json"

//go:embed schema/template.schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Validate checks YAML (or JSON) template content against the embedded schema.
func Validate(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("template schema: %w", err)
	}
	return nil
}

// Synthesize renders s and validates the result against the schema.
func Synthesize(s *stack.Stack) ([]byte, error) {
	content, err := Render(s)
	if err != nil {
		return nil, err
	}
	if err := Validate(content); err != nil {
		return nil, err
	}
	return content, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("load template schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}
