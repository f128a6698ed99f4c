package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

func noSleep(_ context.Context, _ time.Duration) {}

func collectSink(units *[]ui.DisplayUnit) ui.Sink {
	return func(unit ui.DisplayUnit) {
		*units = append(*units, unit)
	}
}

func echoTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "echoes its text argument",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{"type": "string"},
			},
			Required: []string{"text"},
		},
		Handler: func(_ context.Context, inv *Invocation) error {
			text, _ := inv.Call().Arguments["text"].(string)
			return inv.Settle(ui.BotText(inv.UnitID(), text), text, "")
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	err := r.Register(echoTool("echo"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(&Tool{Name: ""}))
	assert.Error(t, r.Register(&Tool{Name: "no-handler"}))
}

func TestRegistry_Lookup_UnknownTool(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_Descriptors_StableOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool("zeta")))
	require.NoError(t, r.Register(echoTool("alpha")))

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 2)
	assert.Equal(t, "alpha", descriptors[0].Name)
	assert.Equal(t, "zeta", descriptors[1].Name)
	assert.Equal(t, "object", descriptors[0].InputSchema["type"])
}

func TestRegistry_Execute_UnknownTool(t *testing.T) {
	r := NewRegistry(WithSleep(noSleep))
	_, err := r.Execute(context.Background(), chattypes.ToolCall{ID: "c1", Name: "missing"}, nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_Execute_InvalidArguments(t *testing.T) {
	r := NewRegistry(WithSleep(noSleep))
	require.NoError(t, r.Register(echoTool("echo")))

	_, err := r.Execute(context.Background(), chattypes.ToolCall{
		ID:        "c1",
		Name:      "echo",
		Arguments: map[string]any{"text": 42},
	}, nil)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "echo", argErr.Tool)
}

func TestRegistry_Execute_MissingRequiredField(t *testing.T) {
	r := NewRegistry(WithSleep(noSleep))
	require.NoError(t, r.Register(echoTool("echo")))

	_, err := r.Execute(context.Background(), chattypes.ToolCall{ID: "c1", Name: "echo"}, nil)

	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Contains(t, argErr.Error(), "missing required field")
}

func TestRegistry_Execute_AppliesDefaults(t *testing.T) {
	r := NewRegistry(WithSleep(noSleep))
	tool := echoTool("echo")
	tool.InputSchema.Required = nil
	tool.Defaults = map[string]any{"text": "fallback"}
	require.NoError(t, r.Register(tool))

	outcome, err := r.Execute(context.Background(), chattypes.ToolCall{ID: "c1", Name: "echo"}, nil)
	require.NoError(t, err)

	// The persisted call records the defaulted arguments, not the raw input.
	assert.Equal(t, "fallback", outcome.Call.Arguments["text"])
	assert.Equal(t, "fallback", outcome.Result.Payload)
}

func TestRegistry_Execute_HandlerMustSettle(t *testing.T) {
	r := NewRegistry(WithSleep(noSleep))
	require.NoError(t, r.Register(&Tool{
		Name:        "lazy",
		InputSchema: &JSONSchema{Type: "object"},
		Handler: func(_ context.Context, _ *Invocation) error {
			return nil
		},
	}))

	_, err := r.Execute(context.Background(), chattypes.ToolCall{ID: "c1", Name: "lazy"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without settling")
}

func TestRegistry_Execute_HandlerError(t *testing.T) {
	sentinel := errors.New("boom")
	r := NewRegistry(WithSleep(noSleep))
	require.NoError(t, r.Register(&Tool{
		Name:        "failing",
		InputSchema: &JSONSchema{Type: "object"},
		Handler: func(_ context.Context, _ *Invocation) error {
			return sentinel
		},
	}))

	_, err := r.Execute(context.Background(), chattypes.ToolCall{ID: "c1", Name: "failing"}, nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestInvocation_Lifecycle(t *testing.T) {
	var units []ui.DisplayUnit
	inv := &Invocation{
		call:  chattypes.ToolCall{ID: "c1", Name: "demo"},
		sink:  collectSink(&units),
		sleep: noSleep,
	}

	require.NoError(t, inv.Yield(ui.Spinner(inv.UnitID(), "working...")))
	require.NoError(t, inv.Settle(ui.BotText(inv.UnitID(), "done"), "done", ""))

	// Settled is terminal: further transitions are rejected.
	assert.ErrorIs(t, inv.Yield(ui.Spinner(inv.UnitID(), "late")), ErrAlreadySettled)
	assert.ErrorIs(t, inv.Settle(ui.BotText(inv.UnitID(), "again"), "again", ""), ErrAlreadySettled)

	require.Len(t, units, 1)
	assert.Equal(t, "call-c1", units[0].ID)
	assert.True(t, units[0].Pending)

	outcome, err := inv.settledOutcome()
	require.NoError(t, err)
	assert.Equal(t, "c1", outcome.Result.CallID)
	assert.Equal(t, "done", outcome.Result.Payload)
}
