// Package chattypes defines the conversation data model for devscout.
// This file contains the core types for the durable conversation transcript:
// messages, tool calls, and tool results exchanged with the LLM assistant.
package chattypes

import "time"

// Role identifies the author of a message in the conversation transcript.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall records an assistant-requested tool invocation.
// The ID is unique per call and links the call to its eventual result.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// ToolResult is the settled payload of a tool invocation.
// CallID must match the ID of exactly one earlier ToolCall in the same chat.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Name    string `json:"name"`
	Payload any    `json:"payload"`
}

// Message represents a single turn unit in the conversation history.
// User and system messages carry plain text content. Assistant messages carry
// either text content or tool calls; tool messages carry tool results.
// Once appended to a Chat a message is never mutated; corrections happen by
// appending new messages.
type Message struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	Name        string       `json:"name,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// CloneMessage returns a deep copy suitable for isolation across component
// boundaries.
func CloneMessage(in Message) Message {
	out := in
	if len(in.ToolCalls) > 0 {
		out.ToolCalls = make([]ToolCall, len(in.ToolCalls))
		for i, call := range in.ToolCalls {
			out.ToolCalls[i] = call
			if call.Arguments != nil {
				args := make(map[string]any, len(call.Arguments))
				for k, v := range call.Arguments {
					args[k] = v
				}
				out.ToolCalls[i].Arguments = args
			}
		}
	}
	if len(in.ToolResults) > 0 {
		out.ToolResults = make([]ToolResult, len(in.ToolResults))
		copy(out.ToolResults, in.ToolResults)
	}
	return out
}

// CloneMessages returns deep copies of all messages.
func CloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i := range in {
		out[i] = CloneMessage(in[i])
	}
	return out
}
