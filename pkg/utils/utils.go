// Package utils provides small helpers shared across the engine's packages.
package utils

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GetSchemaFromStruct reflects a JSON schema from any request or config
// struct. The API serves these schemas so clients can validate payloads
// before submitting them.
func GetSchemaFromStruct(target any) (string, error) {
	schema := jsonschema.Reflect(target)

	jsonSchemaBytes, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
