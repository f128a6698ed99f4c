// Package dispatch submits conversation history to a hosted language model
// and normalizes the reply into one of two shapes: a streamed text response
// or a single tool invocation request. The provider wire protocols are owned
// by the SDKs; this package only adapts them.
package dispatch

import (
	"context"
	"fmt"

	"devscout/pkg/chattypes"
)

// SystemPrompt steers the model toward the demo tool set.
const SystemPrompt = `You are a stock trading conversation bot and you can help users buy stocks, step by step.
You and the user can discuss stock prices and the user can adjust the amount of stocks they want to buy, or place an order, in the UI.

Messages inside [] means that it's a UI element or a user event. For example:
- "[Price of AAPL = 100]" means that an interface of the stock price of AAPL is shown to the user.
- "[User has changed the amount of AAPL to 10]" means that the user has changed the amount of AAPL to 10 in the UI.

If the user requests purchasing a stock, call "showStockPurchase" to show the purchase UI.
If the user just wants the price, call "showStockPrice" to show the price.
If you want to show trending stocks, call "listStocks".
If you want to show events, call "getEvents".
If you want to show developers, call "getDevelopers".
If the user wants to sell stock, or complete another impossible task, respond that you are a demo and cannot do that.

Besides that, you can also chat with users and do some calculations if needed.`

// Chunk represents a single fragment of a streaming text reply.
type Chunk struct {
	Content string // The text content of this fragment
	Done    bool   // Whether this is the final fragment
	Err     error  // Any error that occurred during streaming
}

// Reply is the normalized model response for one turn. Exactly one of Stream
// and ToolCall is set.
type Reply struct {
	// Stream delivers text fragments in arrival order, terminated by a
	// chunk with Done set. The sequence is finite and non-restartable.
	Stream <-chan Chunk
	// ToolCall requests the invocation of one named registered tool.
	ToolCall *chattypes.ToolCall
}

// Dispatcher is the model capability consumed by the lifecycle orchestrator.
type Dispatcher interface {
	// Dispatch submits the conversation (roles, content, and names only)
	// plus the tool descriptors, and returns the model's reply.
	Dispatch(ctx context.Context, history []chattypes.Message, tools []chattypes.ToolDescriptor) (*Reply, error)
}

// New creates the dispatcher for the named provider.
func New(provider, apiKey, model string) (Dispatcher, error) {
	switch provider {
	case "openai":
		return NewOpenAIDispatcher(apiKey, model), nil
	case "anthropic":
		return NewAnthropicDispatcher(apiKey, model), nil
	case "gemini":
		return NewGeminiDispatcher(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected openai, anthropic, or gemini)", provider)
	}
}

// textReply wraps already-complete text as a single-chunk stream, for
// providers that do not stream.
func textReply(text string) *Reply {
	ch := make(chan Chunk, 2)
	ch <- Chunk{Content: text}
	ch <- Chunk{Done: true}
	close(ch)
	return &Reply{Stream: ch}
}
