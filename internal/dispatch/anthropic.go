package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"devscout/internal/logger"
	"devscout/pkg/chattypes"
)

// AnthropicDispatcher adapts the Anthropic messages API. Replies are fetched
// synchronously; text content is delivered as a single-fragment stream and
// tool_use blocks become invocation requests.
type AnthropicDispatcher struct {
	apiKey string
	model  string
	client *anthropic.Client
}

var _ Dispatcher = (*AnthropicDispatcher)(nil)

// NewAnthropicDispatcher creates an Anthropic dispatcher with lazy client
// initialization.
func NewAnthropicDispatcher(apiKey, model string) *AnthropicDispatcher {
	return &AnthropicDispatcher{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// initializeClientIfNeeded initializes the Anthropic client if it hasn't
// been initialized yet.
func (d *AnthropicDispatcher) initializeClientIfNeeded() error {
	if d.client != nil {
		return nil // Already initialized
	}
	if d.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}
	client := anthropic.NewClient(option.WithAPIKey(d.apiKey))
	d.client = &client
	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// Dispatch submits the conversation and returns either a text reply or a
// tool invocation request.
func (d *AnthropicDispatcher) Dispatch(ctx context.Context, history []chattypes.Message, tools []chattypes.ToolDescriptor) (*Reply, error) {
	logger.Debug("Anthropic dispatch starting", "model", d.model, "message_count", len(history))

	if err := d.initializeClientIfNeeded(); err != nil {
		return nil, fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	messages, additionalSystemInstructions := convertMessagesToAnthropic(history)

	systemPrompt := SystemPrompt
	if additionalSystemInstructions != "" {
		systemPrompt += "\n\n" + additionalSystemInstructions
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(d.model),
		MaxTokens: 1024,
		Messages:  messages,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Tools:     convertToolsToAnthropic(tools),
	}

	message, err := d.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, fmt.Errorf("no response content returned")
	}

	// A tool_use block anywhere in the reply takes precedence; otherwise
	// concatenate the text blocks.
	var content string
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.ToolUseBlock:
			arguments := map[string]any{}
			if len(variant.Input) > 0 {
				if err := json.Unmarshal(variant.Input, &arguments); err != nil {
					return nil, fmt.Errorf("decode tool arguments: %w", err)
				}
			}
			logger.Debug("Anthropic tool call received", "tool", variant.Name, "call_id", variant.ID)
			return &Reply{ToolCall: &chattypes.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: arguments,
			}}, nil
		case anthropic.TextBlock:
			content += variant.Text
		}
	}
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	logger.Debug("Anthropic response received", "content_length", len(content))
	return textReply(content), nil
}

// convertMessagesToAnthropic converts transcript messages to Anthropic
// format. System-role transcript messages are collected and folded into the
// system prompt, since the messages API only accepts user/assistant turns.
func convertMessagesToAnthropic(history []chattypes.Message) ([]anthropic.MessageParam, string) {
	messages := make([]anthropic.MessageParam, 0, len(history))
	var additional string

	for _, msg := range history {
		switch msg.Role {
		case chattypes.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case chattypes.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case chattypes.RoleSystem:
			if additional != "" {
				additional += "\n\n"
			}
			additional += msg.Content
		case chattypes.RoleTool:
			for _, result := range msg.ToolResults {
				if encoded, err := json.Marshal(result.Payload); err == nil {
					if additional != "" {
						additional += "\n\n"
					}
					additional += fmt.Sprintf("[Result of %s = %s]", result.Name, encoded)
				}
			}
		default:
			// Skip unknown roles
			continue
		}
	}
	return messages, additional
}

// convertToolsToAnthropic renders tool descriptors as Anthropic tool params.
func convertToolsToAnthropic(tools []chattypes.ToolDescriptor) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		toolParam := anthropic.ToolParam{
			Name:        tool.Name,
			Description: anthropic.String(tool.Description),
		}
		if properties, ok := tool.InputSchema["properties"]; ok {
			toolParam.InputSchema = anthropic.ToolInputSchemaParam{Properties: properties}
		}
		params = append(params, anthropic.ToolUnionParam{OfTool: &toolParam})
	}
	return params
}
