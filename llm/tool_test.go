package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelbeely/Conductor-sub001/provider"
)

type volumeArgs struct {
	Level int `json:"level" jsonschema:"required,description=Volume percentage"`
}

func volumeTool() Tool {
	return NewTool("set_volume", "Set the playback volume",
		func(ctx context.Context, in volumeArgs) (string, error) {
			return fmt.Sprintf("volume set to %d", in.Level), nil
		},
	).WithCheck(func(in volumeArgs) error {
		if in.Level < 0 || in.Level > 100 {
			return fmt.Errorf("level must be between 0 and 100, got %d", in.Level)
		}
		return nil
	})
}

func TestTypedTool_Validate(t *testing.T) {
	tool := volumeTool()

	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{"zero", `{"level": 0}`, false},
		{"mid", `{"level": 50}`, false},
		{"max", `{"level": 100}`, false},
		{"above range", `{"level": 150}`, true},
		{"below range", `{"level": -1}`, true},
		{"not json", `nope`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Validate(json.RawMessage(tt.args))
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "set_volume", verr.Tool)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTypedTool_Execute(t *testing.T) {
	tool := volumeTool()

	validated, err := tool.Validate(json.RawMessage(`{"level": 50}`))
	require.NoError(t, err)

	out, err := tool.Execute(context.Background(), validated)
	require.NoError(t, err)
	assert.Equal(t, "volume set to 50", out)
}

func TestTypedTool_ExecuteUnvalidated(t *testing.T) {
	tool := volumeTool()
	_, err := tool.Execute(context.Background(), "wrong type")
	var terr *ToolError
	assert.ErrorAs(t, err, &terr)
}

func TestRegistry_Defs_Sorted(t *testing.T) {
	noop := func(ctx context.Context, in struct{}) (string, error) { return "", nil }
	r := NewRegistry(
		NewTool("zebra", "z", noop),
		NewTool("alpha", "a", noop),
		NewTool("mango", "m", noop),
	)

	defs := r.Defs()
	require.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "mango", defs[1].Name)
	assert.Equal(t, "zebra", defs[2].Name)
}

func TestRegistry_Dispatch(t *testing.T) {
	r := NewRegistry(volumeTool())

	t.Run("success", func(t *testing.T) {
		res := r.Dispatch(context.Background(), provider.ToolCall{
			ID: "call-1", Name: "set_volume", Arguments: `{"level": 30}`,
		})
		assert.Equal(t, "call-1", res.CallID)
		assert.False(t, res.IsError)
		assert.Equal(t, "volume set to 30", res.Content)
	})

	t.Run("validation failure becomes error result", func(t *testing.T) {
		res := r.Dispatch(context.Background(), provider.ToolCall{
			ID: "call-2", Name: "set_volume", Arguments: `{"level": 150}`,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "between 0 and 100")
	})

	t.Run("unknown tool", func(t *testing.T) {
		res := r.Dispatch(context.Background(), provider.ToolCall{
			ID: "call-3", Name: "no_such_tool", Arguments: `{}`,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content, "not found")
	})
}

func TestRegistry_Dispatch_ExecutorError(t *testing.T) {
	failing := NewTool("broken", "always fails",
		func(ctx context.Context, in struct{}) (string, error) {
			return "", errors.New("daemon connection lost")
		},
	)
	r := NewRegistry(failing)

	res := r.Dispatch(context.Background(), provider.ToolCall{ID: "c", Name: "broken"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "daemon connection lost")
}

func TestRegistry_Dispatch_ExecutorPanic(t *testing.T) {
	panicky := NewTool("panicky", "panics",
		func(ctx context.Context, in struct{}) (string, error) {
			panic("boom")
		},
	)
	r := NewRegistry(panicky)

	res := r.Dispatch(context.Background(), provider.ToolCall{ID: "c", Name: "panicky"})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content, "boom")
}

func TestRegistry_Dispatch_MarshalsStructResults(t *testing.T) {
	type out struct {
		Count int `json:"count"`
	}
	structTool := NewTool("count", "returns a struct",
		func(ctx context.Context, in struct{}) (out, error) {
			return out{Count: 7}, nil
		},
	)
	r := NewRegistry(structTool)

	res := r.Dispatch(context.Background(), provider.ToolCall{ID: "c", Name: "count"})
	require.False(t, res.IsError)
	assert.JSONEq(t, `{"count": 7}`, res.Content)
}
