package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"devscout/internal/logger"
	"devscout/pkg/chattypes"
)

// OpenAIDispatcher adapts the OpenAI chat completions API. Text replies are
// streamed fragment by fragment; tool calls are accumulated until complete
// and returned as a single invocation request.
type OpenAIDispatcher struct {
	apiKey string
	model  string
	client *openai.Client
}

var _ Dispatcher = (*OpenAIDispatcher)(nil)

// NewOpenAIDispatcher creates an OpenAI dispatcher with lazy client
// initialization. The underlying client is created on the first dispatch.
func NewOpenAIDispatcher(apiKey, model string) *OpenAIDispatcher {
	return &OpenAIDispatcher{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// initializeClientIfNeeded initializes the OpenAI client if it hasn't been
// initialized yet.
func (d *OpenAIDispatcher) initializeClientIfNeeded() error {
	if d.client != nil {
		return nil // Already initialized
	}
	if d.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	client := openai.NewClient(option.WithAPIKey(d.apiKey))
	d.client = &client
	logger.Debug("OpenAI client initialized", "provider", "openai")
	return nil
}

// Dispatch submits the conversation and returns either a delta stream or a
// tool invocation request.
func (d *OpenAIDispatcher) Dispatch(ctx context.Context, history []chattypes.Message, tools []chattypes.ToolDescriptor) (*Reply, error) {
	logger.Debug("OpenAI dispatch starting", "model", d.model, "message_count", len(history))

	if err := d.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	messages := convertMessagesToOpenAI(history)
	messages = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(SystemPrompt)}, messages...)

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(d.model),
		Messages: messages,
		Tools:    convertToolsToOpenAI(tools),
	}

	stream := d.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	// Read until the reply shape is known: the first content delta means a
	// text reply, the first tool call delta means an invocation request.
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta
		if len(delta.ToolCalls) > 0 {
			return d.finishToolCall(stream, &acc)
		}
		if delta.Content != "" {
			return d.streamText(stream, delta.Content), nil
		}
	}
	if err := stream.Err(); err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	return nil, fmt.Errorf("openai returned an empty response")
}

// streamText wraps the remainder of the stream as a chunk channel, starting
// with the delta that revealed the reply shape.
func (d *OpenAIDispatcher) streamText(stream *ssestream.Stream[openai.ChatCompletionChunk], first string) *Reply {
	ch := make(chan Chunk, 16)
	ch <- Chunk{Content: first}

	go func() {
		defer close(ch)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				ch <- Chunk{Content: chunk.Choices[0].Delta.Content}
			}
		}
		if err := stream.Err(); err != nil {
			ch <- Chunk{Done: true, Err: err}
			return
		}
		ch <- Chunk{Done: true}
	}()

	return &Reply{Stream: ch}
}

// finishToolCall drains the stream and extracts the completed tool call from
// the accumulator.
func (d *OpenAIDispatcher) finishToolCall(stream *ssestream.Stream[openai.ChatCompletionChunk], acc *openai.ChatCompletionAccumulator) (*Reply, error) {
	defer func() { _ = stream.Close() }()

	for stream.Next() {
		acc.AddChunk(stream.Current())
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(acc.Choices) == 0 || len(acc.Choices[0].Message.ToolCalls) == 0 {
		return nil, fmt.Errorf("openai signalled a tool call but returned none")
	}

	raw := acc.Choices[0].Message.ToolCalls[0]
	arguments := map[string]any{}
	if raw.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(raw.Function.Arguments), &arguments); err != nil {
			return nil, fmt.Errorf("decode tool arguments: %w", err)
		}
	}
	logger.Debug("OpenAI tool call received", "tool", raw.Function.Name, "call_id", raw.ID)
	return &Reply{ToolCall: &chattypes.ToolCall{
		ID:        raw.ID,
		Name:      raw.Function.Name,
		Arguments: arguments,
	}}, nil
}

// convertMessagesToOpenAI converts transcript messages to OpenAI format,
// shaping them down to role, content, and name only.
func convertMessagesToOpenAI(history []chattypes.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chattypes.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case chattypes.RoleAssistant:
			if msg.Content == "" {
				// Tool-call-only assistant messages are summarized for the
				// model; the paired tool message carries the result.
				continue
			}
			messages = append(messages, openai.AssistantMessage(msg.Content))
		case chattypes.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case chattypes.RoleTool:
			for _, result := range msg.ToolResults {
				if encoded, err := json.Marshal(result.Payload); err == nil {
					messages = append(messages, openai.SystemMessage(
						fmt.Sprintf("[Result of %s = %s]", result.Name, encoded)))
				}
			}
		default:
			// Skip unknown roles
			continue
		}
	}
	return messages
}

// convertToolsToOpenAI renders tool descriptors as OpenAI function tools.
func convertToolsToOpenAI(tools []chattypes.ToolDescriptor) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.InputSchema),
			},
		})
	}
	return params
}
