package dispatch

import (
	"context"
	"fmt"
	"sync"

	"devscout/pkg/chattypes"
)

// Scripted is a deterministic dispatcher for tests. Each Dispatch call
// consumes the next scripted response in order.
type Scripted struct {
	mu        sync.Mutex
	index     int
	responses []ScriptedResponse
}

// ScriptedResponse configures one model turn in a scripted sequence.
// Fragments produces a text reply delivered as individual chunks; ToolCall
// produces a tool invocation; Err fails the dispatch.
type ScriptedResponse struct {
	Fragments []string
	ToolCall  *chattypes.ToolCall
	Err       error
}

var _ Dispatcher = (*Scripted)(nil)

// NewScripted creates a scripted dispatcher from an ordered response list.
func NewScripted(responses ...ScriptedResponse) *Scripted {
	cloned := make([]ScriptedResponse, len(responses))
	copy(cloned, responses)
	return &Scripted{responses: cloned}
}

// Dispatch returns the next scripted response, or an error when the script
// is exhausted.
func (s *Scripted) Dispatch(_ context.Context, _ []chattypes.Message, _ []chattypes.ToolDescriptor) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index >= len(s.responses) {
		return nil, fmt.Errorf("script exhausted at step %d", s.index+1)
	}
	current := s.responses[s.index]
	s.index++

	if current.Err != nil {
		return nil, current.Err
	}
	if current.ToolCall != nil {
		call := *current.ToolCall
		return &Reply{ToolCall: &call}, nil
	}

	ch := make(chan Chunk, len(current.Fragments)+1)
	for _, fragment := range current.Fragments {
		ch <- Chunk{Content: fragment}
	}
	ch <- Chunk{Done: true}
	close(ch)
	return &Reply{Stream: ch}, nil
}
