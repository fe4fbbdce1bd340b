// Package llm provides conversation primitives and the executable tool
// abstraction shared by the orchestrator and its backends.
package llm

import "github.com/shelbeely/Conductor-sub001/provider"

// Message is an alias for provider.Message for convenience.
type Message = provider.Message

// Role is an alias for provider.Role for convenience.
type Role = provider.Role

// Role constants.
const (
	RoleSystem    = provider.RoleSystem
	RoleUser      = provider.RoleUser
	RoleAssistant = provider.RoleAssistant
	RoleTool      = provider.RoleTool
)

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{
		Role:    RoleSystem,
		Content: content,
	}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{
		Role:    RoleUser,
		Content: content,
	}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{
		Role:    RoleAssistant,
		Content: content,
	}
}

// AssistantMessageWithToolCalls creates an assistant message carrying the
// model's tool calls.
func AssistantMessageWithToolCalls(content string, toolCalls []provider.ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// ToolMessage creates a tool result message correlated to a tool call.
func ToolMessage(toolCallID, content string) Message {
	return Message{
		Role:    RoleTool,
		Content: content,
		ToolID:  toolCallID,
	}
}
