package provider

import (
	"encoding/json"
	"time"
)

// Request represents a backend-agnostic generation request.
type Request struct {
	Model         string
	Messages      []Message
	Tools         []ToolDef
	Temperature   *float64
	MaxTokens     *int
	StopSequences []string
}

// Message represents a single message in the conversation.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall
	ToolID    string // set when Role == RoleTool, correlates to the call
}

// Role represents the message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Response contains the backend's reply.
type Response struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason FinishReason
	Usage        Usage
}

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop      FinishReason = "stop"
	FinishReasonToolCalls FinishReason = "tool_calls"
	FinishReasonLength    FinishReason = "length"
)

// ToolCall represents a tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON string
}

// ToolDef defines a tool the model can use.
type ToolDef struct {
	Name        string
	Description string
	Parameters  json.RawMessage // JSON Schema
}

// ModelInfo describes one model a backend serves.
type ModelInfo struct {
	ID          string
	DisplayName string
	CreatedAt   time.Time
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Profile is the session-scoped provider configuration: which backend is
// active and which of its models requests are sent to. It is constructed
// at session start and never persisted.
type Profile struct {
	Provider string
	Model    string
}
