package tools

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaCache avoids recompiling the same tool's input schema on every call,
// grounded on pkg/pluginsdk/validation.go's compileSchema.
var schemaCache sync.Map

// validateArgs checks args against a tool's JSON-Schema-shaped input schema
// before dispatch (spec's tool-arg-validation domain stack entry), so a
// malformed call fails with a clear validation error instead of reaching
// the remote source.
func validateArgs(toolName string, rawSchema interface{}, args map[string]interface{}) error {
	schemaJSON, err := json.Marshal(rawSchema)
	if err != nil {
		return fmt.Errorf("tool %s: encoding input schema: %w", toolName, err)
	}
	if string(schemaJSON) == "null" || string(schemaJSON) == "{}" {
		return nil
	}

	compiled, err := compileSchema(toolName, schemaJSON)
	if err != nil {
		return fmt.Errorf("tool %s: compiling input schema: %w", toolName, err)
	}

	payload, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("tool %s: encoding arguments: %w", toolName, err)
	}
	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("tool %s: decoding arguments: %w", toolName, err)
	}

	if err := compiled.Validate(decoded); err != nil {
		return fmt.Errorf("tool %s: arguments invalid: %w", toolName, err)
	}
	return nil
}

func compileSchema(toolName string, schemaJSON []byte) (*jsonschema.Schema, error) {
	key := string(schemaJSON)
	if cached, ok := schemaCache.Load(key); ok {
		if compiled, ok := cached.(*jsonschema.Schema); ok {
			return compiled, nil
		}
	}

	compiled, err := jsonschema.CompileString(toolName+".schema.json", key)
	if err != nil {
		return nil, err
	}
	schemaCache.Store(key, compiled)
	return compiled, nil
}
