package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates dashboard configuration documents.
type ConfigValidator interface {
	Validate(cfg DashboardConfig) error
}

const configSchemaURL = "dashboard-config.json"

const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "items"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "layout": {"enum": ["grid", "list"]},
    "isDefault": {"type": "boolean"},
    "createdAt": {"type": "string"},
    "updatedAt": {"type": "string"},
    "items": {"type": "array", "items": {"$ref": "#/definitions/item"}}
  },
  "definitions": {
    "item": {
      "type": "object",
      "required": ["id", "type", "title", "visualizationType"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"enum": ["segment", "combined", "trend", "data-source"]},
        "title": {"type": "string"},
        "visualizationType": {"enum": ["pie", "bar", "line", "area", "table"]},
        "filters": {"type": "array", "items": {"$ref": "#/definitions/filter"}},
        "segments": {"type": "array", "items": {"$ref": "#/definitions/segment"}},
        "sourceId": {"type": "string"},
        "service": {"type": "string"}
      }
    },
    "filter": {
      "type": "object",
      "required": ["id", "type", "operator"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string"},
        "min": {"type": "number"},
        "max": {"type": "number"},
        "operator": {"type": "string"}
      }
    },
    "segment": {
      "type": "object",
      "required": ["id", "type", "value"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string"},
        "value": {"type": "string"}
      }
    }
  }
}`

// JSONSchemaValidator checks configurations against the persisted-format schema.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled *jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate reports schema violations and duplicate item ids as a *ValidationError.
func (v *JSONSchemaValidator) Validate(cfg DashboardConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("dashboard: marshal config %s: %w", cfg.ID, err)
	}
	if err := v.ValidateJSON(data); err != nil {
		return err
	}
	return ValidateItems(cfg.Items)
}

// ValidateJSON validates a raw configuration document.
func (v *JSONSchemaValidator) ValidateJSON(data []byte) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return newValidationError("config", fmt.Sprintf("invalid JSON: %v", err))
	}
	if err := schema.Validate(payload); err != nil {
		return newValidationError("config", schemaMessage(err))
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema := v.compiled
	v.mu.RUnlock()
	if schema != nil {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, strings.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("dashboard: load config schema: %w", err)
	}
	compiled, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile config schema: %w", err)
	}
	v.mu.Lock()
	v.compiled = compiled
	v.mu.Unlock()
	return compiled, nil
}

func schemaMessage(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	location := verr.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, verr.Message)
}
