package llm

import "fmt"

// ValidationError reports tool arguments that failed schema or constraint
// checks. It is fed back to the model as a tool result so it can retry
// with corrected arguments.
type ValidationError struct {
	Tool   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %s", e.Tool, e.Reason)
}

// ToolError wraps a failure raised by a tool's executor.
type ToolError struct {
	Tool  string
	Cause error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %q execution failed: %v", e.Tool, e.Cause)
}

func (e *ToolError) Unwrap() error {
	return e.Cause
}

// ToolNotFoundError is returned when a named tool is not registered.
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %q", e.Name)
}
