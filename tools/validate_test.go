package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
			"limit": map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []interface{}{"query"},
	}
}

func TestValidateArgsAcceptsMatchingArguments(t *testing.T) {
	err := validateArgs("search", exampleSchema(), map[string]interface{}{
		"query": "hello",
		"limit": float64(5),
	})
	assert.NoError(t, err)
}

func TestValidateArgsRejectsMissingRequiredField(t *testing.T) {
	err := validateArgs("search", exampleSchema(), map[string]interface{}{
		"limit": float64(5),
	})
	assert.Error(t, err)
}

func TestValidateArgsRejectsWrongType(t *testing.T) {
	err := validateArgs("search", exampleSchema(), map[string]interface{}{
		"query": 123,
	})
	assert.Error(t, err)
}

func TestValidateArgsSkipsEmptySchema(t *testing.T) {
	assert.NoError(t, validateArgs("search", nil, map[string]interface{}{"anything": true}))
	assert.NoError(t, validateArgs("search", map[string]interface{}{}, map[string]interface{}{"anything": true}))
}

func TestCompileSchemaCachesBySchemaJSON(t *testing.T) {
	schemaJSON, err := json.Marshal(exampleSchema())
	require.NoError(t, err)

	first, err := compileSchema("search", schemaJSON)
	require.NoError(t, err)

	second, err := compileSchema("search", schemaJSON)
	require.NoError(t, err)

	assert.Same(t, first, second, "identical schema JSON should hit the cache")
}
