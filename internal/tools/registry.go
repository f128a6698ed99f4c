package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// ErrUnknownTool is returned when the model names a tool that was never
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// ArgumentError wraps a schema validation failure for a known tool.
type ArgumentError struct {
	Tool string
	Err  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %q: %v", e.Tool, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// Handler executes the business logic for one tool call. It must settle the
// invocation exactly once before returning.
type Handler func(ctx context.Context, inv *Invocation) error

// Tool is one registry entry: descriptor metadata, argument defaults applied
// before validation, and the handler.
type Tool struct {
	Name        string
	Description string
	InputSchema *JSONSchema
	// Defaults are merged into the arguments for any absent field before
	// schema validation runs, so optional fields behave per their declared
	// default rather than per destructuring accidents.
	Defaults map[string]any
	Handler  Handler
}

// Registry is the fixed mapping from tool name to execution procedure.
// Registration is validated up front so an unknown name at dispatch time is
// a typed error, never a fallthrough.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	sleep func(context.Context, time.Duration)
}

// Option adjusts registry construction.
type Option func(*Registry)

// WithSleep replaces the pause function used between intermediate emissions.
// Tests pass a no-op to keep tool execution instantaneous.
func WithSleep(sleep func(context.Context, time.Duration)) Option {
	return func(r *Registry) {
		r.sleep = sleep
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		tools: make(map[string]*Tool),
		sleep: contextSleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register inserts a tool when its name is valid and not in use.
func (r *Registry) Register(tool *Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	if tool.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %q has no handler", tool.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Lookup fetches a tool by name.
func (r *Registry) Lookup(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return tool, nil
}

// Descriptors produces the tool descriptions handed to the model dispatcher,
// in stable name order.
func (r *Registry) Descriptors() []chattypes.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	descriptors := make([]chattypes.ToolDescriptor, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		descriptors = append(descriptors, chattypes.ToolDescriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema.ToMap(),
		})
	}
	return descriptors
}

// Execute runs a registered tool through its full lifecycle: defaults, schema
// validation, handler execution with progressive emission, settle. The sink
// receives placeholder units as the call progresses; the settled outcome is
// returned. Validation failures leave no partial effects.
func (r *Registry) Execute(ctx context.Context, call chattypes.ToolCall, sink ui.Sink) (*Outcome, error) {
	tool, err := r.Lookup(call.Name)
	if err != nil {
		return nil, err
	}

	args := make(map[string]any, len(call.Arguments)+len(tool.Defaults))
	for k, v := range call.Arguments {
		args[k] = v
	}
	for field, value := range tool.Defaults {
		if _, present := args[field]; !present {
			args[field] = value
		}
	}

	if err := tool.InputSchema.Validate(args); err != nil {
		return nil, &ArgumentError{Tool: call.Name, Err: err}
	}

	inv := &Invocation{
		call:  chattypes.ToolCall{ID: call.ID, Name: call.Name, Arguments: args},
		sink:  sink,
		sleep: r.sleep,
	}
	if err := tool.Handler(ctx, inv); err != nil {
		return nil, fmt.Errorf("tool %q failed: %w", call.Name, err)
	}
	return inv.settledOutcome()
}
