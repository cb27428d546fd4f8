package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaJSON is the embedded JSON Schema for formrelay config files.
//
//go:embed formrelay.schema.json
var SchemaJSON string

var schema = jsonschema.MustCompileString("formrelay.schema.json", SchemaJSON)

// Validate runs JSON-Schema validation against the embedded config schema.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
