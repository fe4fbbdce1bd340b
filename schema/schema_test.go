package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type volumeArgs struct {
	Level int `json:"level" jsonschema:"required,description=Volume percentage"`
}

type queueArgs struct {
	TrackIDs []string `json:"track_ids" jsonschema:"required"`
	Position int      `json:"position,omitempty"`
}

func TestGenerate(t *testing.T) {
	raw, err := Generate[volumeArgs]()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "level")

	required, ok := schema["required"].([]any)
	require.True(t, ok)
	assert.Contains(t, required, "level")
}

func TestGenerate_NoRefs(t *testing.T) {
	raw, err := Generate[queueArgs]()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "$ref")
}

func TestGenerateFromValue(t *testing.T) {
	raw, err := GenerateFromValue(&queueArgs{})
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(raw, &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "track_ids")
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		raw := MustGenerate[volumeArgs]()
		assert.NotEmpty(t, raw)
	})
}
