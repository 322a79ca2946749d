package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// SchemaBaseURL is the base URL for soundtext JSON schemas
const SchemaBaseURL = "https://soundtext.dev/schemas/v1alpha1"

const errorFormat = "  - %s"

// ConfigType represents the type of configuration file
type ConfigType string

const (
	ConfigTypeSoundtext ConfigType = "soundtextconfig"
)

//go:embed schema/soundtextconfig.json
var soundtextSchema []byte

// SchemaValidationError represents a validation error from JSON schema validation
type SchemaValidationError struct {
	Field       string
	Description string
	Value       interface{}
}

// Error implements the error interface
func (e SchemaValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s (value: %v)", e.Field, e.Description, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// SchemaValidationResult contains the results of schema validation
type SchemaValidationResult struct {
	Valid  bool
	Errors []SchemaValidationError
}

// ValidateWithSchema validates YAML data against the embedded JSON schema
func ValidateWithSchema(yamlData []byte, configType ConfigType) (*SchemaValidationResult, error) {
	schema, err := embeddedSchema(configType)
	if err != nil {
		return nil, err
	}
	return validateWithSchemaLoader(yamlData, gojsonschema.NewBytesLoader(schema))
}

// ValidateWithLocalSchema validates YAML data against a local JSON schema file
func ValidateWithLocalSchema(yamlData []byte, configType ConfigType, schemaDir string) (*SchemaValidationResult, error) {
	schemaPath := fmt.Sprintf("file://%s/%s.json", schemaDir, configType)
	return validateWithSchemaLoader(yamlData, gojsonschema.NewReferenceLoader(schemaPath))
}

func embeddedSchema(configType ConfigType) ([]byte, error) {
	switch configType {
	case ConfigTypeSoundtext:
		return soundtextSchema, nil
	default:
		return nil, fmt.Errorf("no schema for config type %q", configType)
	}
}

func validateWithSchemaLoader(yamlData []byte, schemaLoader gojsonschema.JSONLoader) (*SchemaValidationResult, error) {
	// Convert YAML to JSON for schema validation
	var data interface{}
	if err := yaml.Unmarshal(yamlData, &data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if data == nil {
		data = map[string]interface{}{}
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to JSON: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	validationResult := &SchemaValidationResult{
		Valid:  result.Valid(),
		Errors: make([]SchemaValidationError, 0),
	}

	if !result.Valid() {
		for _, err := range result.Errors() {
			validationResult.Errors = append(validationResult.Errors, SchemaValidationError{
				Field:       err.Field(),
				Description: err.Description(),
				Value:       err.Value(),
			})
		}
	}

	return validationResult, nil
}

// ValidateSoundtextConfig validates a soundtext configuration against its schema
func ValidateSoundtextConfig(yamlData []byte) error {
	result, err := ValidateWithSchema(yamlData, ConfigTypeSoundtext)
	if err != nil {
		return err
	}

	if !result.Valid {
		var errorMessages []string
		for _, e := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf(errorFormat, e.Error()))
		}
		return fmt.Errorf("soundtext configuration does not match schema:\n%s", strings.Join(errorMessages, "\n"))
	}

	return nil
}
