package dispatch

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"devscout/internal/logger"
	"devscout/pkg/chattypes"
)

// GeminiDispatcher adapts the Google Gemini API. Replies are fetched
// synchronously; text content is delivered as a single-fragment stream and
// function calls become invocation requests.
type GeminiDispatcher struct {
	apiKey string
	model  string
	client *genai.Client
}

var _ Dispatcher = (*GeminiDispatcher)(nil)

// NewGeminiDispatcher creates a Gemini dispatcher with lazy client
// initialization.
func NewGeminiDispatcher(apiKey, model string) *GeminiDispatcher {
	return &GeminiDispatcher{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// initializeClientIfNeeded initializes the Gemini client if it hasn't been
// initialized yet.
func (d *GeminiDispatcher) initializeClientIfNeeded(ctx context.Context) error {
	if d.client != nil {
		return nil // Already initialized
	}
	if d.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: d.apiKey})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}
	d.client = client
	logger.Debug("Gemini client initialized", "provider", "gemini")
	return nil
}

// Dispatch submits the conversation and returns either a text reply or a
// tool invocation request.
func (d *GeminiDispatcher) Dispatch(ctx context.Context, history []chattypes.Message, tools []chattypes.ToolDescriptor) (*Reply, error) {
	logger.Debug("Gemini dispatch starting", "model", d.model, "message_count", len(history))

	if err := d.initializeClientIfNeeded(ctx); err != nil {
		return nil, err
	}

	contents := convertMessagesToGemini(history)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Tools:             convertToolsToGemini(tools),
	}

	result, err := d.client.Models.GenerateContent(ctx, d.model, contents, config)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response content returned")
	}

	var content string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			call := part.FunctionCall
			arguments := map[string]any{}
			for k, v := range call.Args {
				arguments[k] = v
			}
			logger.Debug("Gemini tool call received", "tool", call.Name)
			return &Reply{ToolCall: &chattypes.ToolCall{
				Name:      call.Name,
				Arguments: arguments,
			}}, nil
		}
		content += part.Text
	}
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	logger.Debug("Gemini response received", "content_length", len(content))
	return textReply(content), nil
}

// convertMessagesToGemini converts transcript messages to Gemini format.
// Gemini uses "model" for the assistant role and has no system role inside
// the conversation, so system messages become prefixed user turns.
func convertMessagesToGemini(history []chattypes.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role genai.Role
		var text string

		switch msg.Role {
		case chattypes.RoleUser:
			role = genai.RoleUser
			text = msg.Content
		case chattypes.RoleAssistant:
			if msg.Content == "" {
				continue
			}
			role = genai.RoleModel
			text = msg.Content
		case chattypes.RoleSystem:
			role = genai.RoleUser
			text = "System: " + msg.Content
		default:
			// Skip tool and unknown roles; tool results already surface as
			// system notes in the transcript.
			continue
		}

		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: text}},
			Role:  string(role),
		})
	}

	if len(contents) == 0 {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: ""}},
			Role:  string(genai.RoleUser),
		})
	}
	return contents
}

// convertToolsToGemini renders tool descriptors as Gemini function
// declarations.
func convertToolsToGemini(tools []chattypes.ToolDescriptor) []*genai.Tool {
	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:                 tool.Name,
			Description:          tool.Description,
			ParametersJsonSchema: tool.InputSchema,
		})
	}
	if len(declarations) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}
