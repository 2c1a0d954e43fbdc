package langdata

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ValidationError collects the individual schema violations for a data file.
type ValidationError struct {
	Errors []string
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0])
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// validateYAML checks raw YAML content against an embedded JSON schema.
func validateYAML(schemaPath string, raw []byte) error {
	schemaData, err := dataFS.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaPath, err)
	}

	schema, err := jsonschema.CompileString(schemaPath, string(schemaData))
	if err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", schemaPath, err)
	}

	var data interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := schema.Validate(data); err != nil {
		var messages []string
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			for _, cause := range validationErr.Causes {
				messages = append(messages, cause.Message)
			}
			if len(messages) == 0 {
				messages = append(messages, validationErr.Message)
			}
		} else {
			messages = append(messages, err.Error())
		}
		return ValidationError{Errors: messages}
	}
	return nil
}
