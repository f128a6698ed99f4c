package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devscout/pkg/chattypes"
)

func drain(t *testing.T, stream <-chan Chunk) string {
	t.Helper()
	var text string
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		text += chunk.Content
		if chunk.Done {
			break
		}
	}
	return text
}

func TestScripted_TextResponse(t *testing.T) {
	d := NewScripted(ScriptedResponse{Fragments: []string{"Hel", "lo, ", "world"}})

	reply, err := d.Dispatch(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.Stream)
	assert.Nil(t, reply.ToolCall)

	assert.Equal(t, "Hello, world", drain(t, reply.Stream))
}

func TestScripted_ToolCallResponse(t *testing.T) {
	d := NewScripted(ScriptedResponse{
		ToolCall: &chattypes.ToolCall{
			ID:        "call-1",
			Name:      chattypes.ToolGetDevelopers,
			Arguments: map[string]any{"count": 3},
		},
	})

	reply, err := d.Dispatch(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, reply.ToolCall)
	assert.Nil(t, reply.Stream)
	assert.Equal(t, chattypes.ToolGetDevelopers, reply.ToolCall.Name)
}

func TestScripted_ConsumesInOrder(t *testing.T) {
	d := NewScripted(
		ScriptedResponse{Fragments: []string{"first"}},
		ScriptedResponse{Fragments: []string{"second"}},
	)

	reply, err := d.Dispatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", drain(t, reply.Stream))

	reply, err = d.Dispatch(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "second", drain(t, reply.Stream))
}

func TestScripted_Exhausted(t *testing.T) {
	d := NewScripted()
	_, err := d.Dispatch(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script exhausted")
}

func TestScripted_Error(t *testing.T) {
	sentinel := errors.New("model offline")
	d := NewScripted(ScriptedResponse{Err: sentinel})

	_, err := d.Dispatch(context.Background(), nil, nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestNew_ProviderSelection(t *testing.T) {
	for _, provider := range []string{"openai", "anthropic", "gemini"} {
		d, err := New(provider, "test-key", "")
		require.NoError(t, err, provider)
		assert.NotNil(t, d)
	}

	_, err := New("cohere", "test-key", "")
	assert.Error(t, err)
}

func TestTextReply_SingleChunkStream(t *testing.T) {
	reply := textReply("done")
	assert.Equal(t, "done", drain(t, reply.Stream))
}
