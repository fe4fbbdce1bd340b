package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/shelbeely/Conductor-sub001/provider"
	"github.com/shelbeely/Conductor-sub001/schema"
)

// Tool represents an executable tool that the model can call. Validation
// is a pure function over raw arguments, separate from execution, so the
// orchestrator can feed argument errors back to the model without side
// effects.
type Tool interface {
	// Name returns the tool's name as seen by the model.
	Name() string

	// Description returns the tool's description for the model.
	Description() string

	// Parameters returns the JSON schema for the tool's arguments.
	Parameters() *jsonschema.Schema

	// Validate decodes and checks raw arguments, returning the validated
	// form or a *ValidationError.
	Validate(args json.RawMessage) (any, error)

	// Execute runs the tool with arguments previously returned by Validate.
	Execute(ctx context.Context, validated any) (any, error)
}

// TypedTool provides type-safe tool creation with auto-generated schema.
// In is the argument type, Out is the result type.
type TypedTool[In any, Out any] struct {
	name        string
	description string
	check       func(In) error
	fn          func(ctx context.Context, in In) (Out, error)
	schema      *jsonschema.Schema
}

// NewTool creates a type-safe tool from a function. The argument type In
// is used to generate the JSON schema automatically.
//
// Example:
//
//	type VolumeArgs struct {
//	    Level int `json:"level" jsonschema:"required,description=Volume percentage 0-100"`
//	}
//
//	volumeTool := llm.NewTool("set_volume", "Set the playback volume",
//	    func(ctx context.Context, in VolumeArgs) (string, error) {
//	        return "volume set", player.SetVolume(ctx, in.Level)
//	    },
//	)
func NewTool[In any, Out any](
	name, description string,
	fn func(ctx context.Context, in In) (Out, error),
) *TypedTool[In, Out] {
	var zero In
	paramSchema := schema.Reflector.Reflect(&zero)

	return &TypedTool[In, Out]{
		name:        name,
		description: description,
		fn:          fn,
		schema:      paramSchema,
	}
}

// WithCheck attaches a constraint check run during Validate, after the
// arguments decode. It returns the tool for chaining.
func (t *TypedTool[In, Out]) WithCheck(check func(In) error) *TypedTool[In, Out] {
	t.check = check
	return t
}

// Name returns the tool's name.
func (t *TypedTool[In, Out]) Name() string {
	return t.name
}

// Description returns the tool's description.
func (t *TypedTool[In, Out]) Description() string {
	return t.description
}

// Parameters returns the JSON schema for the tool's arguments.
func (t *TypedTool[In, Out]) Parameters() *jsonschema.Schema {
	return t.schema
}

// Validate decodes args into In and applies the constraint check.
func (t *TypedTool[In, Out]) Validate(args json.RawMessage) (any, error) {
	var input In
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return nil, &ValidationError{Tool: t.name, Reason: err.Error()}
		}
	}
	if t.check != nil {
		if err := t.check(input); err != nil {
			return nil, &ValidationError{Tool: t.name, Reason: err.Error()}
		}
	}
	return input, nil
}

// Execute runs the tool. validated must be the value returned by Validate.
func (t *TypedTool[In, Out]) Execute(ctx context.Context, validated any) (any, error) {
	input, ok := validated.(In)
	if !ok {
		return nil, &ToolError{Tool: t.name, Cause: fmt.Errorf("arguments were not validated")}
	}
	return t.fn(ctx, input)
}

// TypedCall provides a type-safe way to call the tool directly, bypassing
// JSON decoding when the typed input is at hand.
func (t *TypedTool[In, Out]) TypedCall(ctx context.Context, input In) (Out, error) {
	return t.fn(ctx, input)
}

// Registry manages the fixed set of tools available to the model.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a tool registry.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	r.Register(tools...)
	return r
}

// Register adds tools to the registry.
func (r *Registry) Register(tools ...Tool) {
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Defs returns provider tool definitions for every registered tool,
// sorted by name so the advertised list is stable.
func (r *Registry) Defs() []provider.ToolDef {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]provider.ToolDef, 0, len(names))
	for _, name := range names {
		t := r.tools[name]
		params, _ := json.Marshal(t.Parameters())
		defs = append(defs, provider.ToolDef{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  params,
		})
	}
	return defs
}

// Result is the outcome of one tool call, correlated by the call's id.
// Exactly one Result is produced per call before the conversation
// continues.
type Result struct {
	CallID  string
	Tool    string
	Content string
	IsError bool
}

// Dispatch validates and executes a single tool call, always returning a
// Result: validation and execution failures become error results, never
// panics or bare errors, so the orchestrator can feed them back to the
// model.
func (r *Registry) Dispatch(ctx context.Context, call provider.ToolCall) Result {
	res := Result{CallID: call.ID, Tool: call.Name}

	tool, ok := r.Get(call.Name)
	if !ok {
		res.IsError = true
		res.Content = (&ToolNotFoundError{Name: call.Name}).Error()
		return res
	}

	validated, err := tool.Validate(json.RawMessage(call.Arguments))
	if err != nil {
		res.IsError = true
		res.Content = err.Error()
		return res
	}

	out, err := execute(ctx, tool, validated)
	if err != nil {
		res.IsError = true
		res.Content = (&ToolError{Tool: call.Name, Cause: err}).Error()
		return res
	}

	switch v := out.(type) {
	case string:
		res.Content = v
	default:
		b, err := json.Marshal(out)
		if err != nil {
			res.IsError = true
			res.Content = fmt.Sprintf("marshaling result: %v", err)
			return res
		}
		res.Content = string(b)
	}
	return res
}

// execute shields the orchestrator from panicking executors.
func execute(ctx context.Context, tool Tool, validated any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return tool.Execute(ctx, validated)
}
