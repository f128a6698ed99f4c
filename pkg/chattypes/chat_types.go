package chattypes

import "time"

// Chat is the canonical conversation state: the ordered, append-only sequence
// of messages exchanged in one conversation, plus the metadata the store
// persists alongside it.
type Chat struct {
	ID        string    `json:"id"`         // Unique conversation identifier
	Title     string    `json:"title"`      // Derived from the first user message
	UserID    string    `json:"user_id"`    // Owner; empty when unauthenticated
	Path      string    `json:"path"`       // Canonical page path, e.g. /chat/<id>
	Messages  []Message `json:"messages"`   // Ordered conversation history
	CreatedAt time.Time `json:"created_at"` // Conversation creation timestamp
}

// Append adds a message to the chat history. Messages are append-only: the
// existing history is never reordered or rewritten.
func (c *Chat) Append(messages ...Message) {
	c.Messages = append(c.Messages, messages...)
}

// LastMessage returns the most recently appended message, or false when the
// chat is empty.
func (c *Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// ToolCallCount returns the number of tool call records across all messages.
func (c *Chat) ToolCallCount() int {
	var n int
	for _, msg := range c.Messages {
		n += len(msg.ToolCalls)
	}
	return n
}

// ToolResultCount returns the number of tool result records across all
// messages.
func (c *Chat) ToolResultCount() int {
	var n int
	for _, msg := range c.Messages {
		n += len(msg.ToolResults)
	}
	return n
}

// CloneChat returns a deep copy safe for in-memory stores.
func CloneChat(in *Chat) *Chat {
	if in == nil {
		return nil
	}
	out := *in
	out.Messages = CloneMessages(in.Messages)
	return &out
}
