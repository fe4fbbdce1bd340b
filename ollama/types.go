package ollama

import "encoding/json"

// chatRequest represents an Ollama chat request.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []message      `json:"messages"`
	Tools    []toolDef      `json:"tools,omitempty"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// message represents a chat message.
type message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

// toolDef represents a tool definition.
type toolDef struct {
	Type     string      `json:"type"`
	Function functionDef `json:"function"`
}

// functionDef represents a function definition within a tool.
type functionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// toolCall represents a tool call from the model. Ollama sends arguments
// as a JSON object rather than an encoded string.
type toolCall struct {
	Function functionCall `json:"function"`
}

// functionCall represents the function being called.
type functionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// chatResponse represents an Ollama chat response.
type chatResponse struct {
	Model           string  `json:"model"`
	Message         message `json:"message"`
	Done            bool    `json:"done"`
	DoneReason      string  `json:"done_reason"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

// tagList represents the response of the local model listing endpoint.
type tagList struct {
	Models []tagInfo `json:"models"`
}

// tagInfo represents one locally available model.
type tagInfo struct {
	Name       string `json:"name"`
	ModifiedAt string `json:"modified_at"`
	Size       int64  `json:"size"`
}

// errorResponse represents an API error response.
type errorResponse struct {
	Error string `json:"error"`
}
