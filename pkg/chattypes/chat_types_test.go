package chattypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_Append(t *testing.T) {
	chat := &Chat{ID: "c1"}
	chat.Append(Message{ID: "m1", Role: RoleUser, Content: "hello"})
	chat.Append(
		Message{ID: "m2", Role: RoleAssistant, Content: "hi"},
		Message{ID: "m3", Role: RoleSystem, Content: "[note]"},
	)

	require.Len(t, chat.Messages, 3)
	assert.Equal(t, "m1", chat.Messages[0].ID)
	assert.Equal(t, "m3", chat.Messages[2].ID)
}

func TestChat_LastMessage(t *testing.T) {
	chat := &Chat{}
	_, ok := chat.LastMessage()
	assert.False(t, ok)

	chat.Append(Message{ID: "m1"}, Message{ID: "m2"})
	last, ok := chat.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "m2", last.ID)
}

func TestChat_ToolCallCounts(t *testing.T) {
	chat := &Chat{}
	chat.Append(
		Message{Role: RoleUser, Content: "show AAPL"},
		Message{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call-1", Name: ToolShowStockPrice}}},
		Message{Role: RoleTool, ToolResults: []ToolResult{{CallID: "call-1", Name: ToolShowStockPrice}}},
	)

	assert.Equal(t, 1, chat.ToolCallCount())
	assert.Equal(t, 1, chat.ToolResultCount())
}

func TestCloneChat_Isolation(t *testing.T) {
	original := &Chat{
		ID:    "c1",
		Title: "hello",
		Messages: []Message{
			{
				ID:   "m1",
				Role: RoleAssistant,
				ToolCalls: []ToolCall{
					{ID: "call-1", Name: ToolGetDevelopers, Arguments: map[string]any{"count": 3}},
				},
			},
		},
	}

	clone := CloneChat(original)
	require.NotNil(t, clone)

	clone.Messages[0].ToolCalls[0].Arguments["count"] = 7
	clone.Append(Message{ID: "m2"})

	assert.Equal(t, 3, original.Messages[0].ToolCalls[0].Arguments["count"])
	assert.Len(t, original.Messages, 1)
}

func TestCloneChat_Nil(t *testing.T) {
	assert.Nil(t, CloneChat(nil))
}
