package ui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devscout/pkg/chattypes"
)

func sampleChat() *chattypes.Chat {
	return &chattypes.Chat{
		ID: "chat-1",
		Messages: []chattypes.Message{
			{ID: "m0", Role: chattypes.RoleSystem, Content: "[User has selected an invalid amount]"},
			{ID: "m1", Role: chattypes.RoleUser, Content: "show me AAPL"},
			{ID: "m2", Role: chattypes.RoleAssistant, ToolCalls: []chattypes.ToolCall{
				{ID: "call-1", Name: chattypes.ToolShowStockPrice},
			}},
			{ID: "m3", Role: chattypes.RoleTool, Name: chattypes.ToolShowStockPrice, ToolResults: []chattypes.ToolResult{
				{CallID: "call-1", Name: chattypes.ToolShowStockPrice, Payload: chattypes.Stock{Symbol: "AAPL", Price: 187.3, Delta: 1.2}},
			}},
			{ID: "m4", Role: chattypes.RoleAssistant, Content: "Anything else?"},
		},
	}
}

func TestProject_Rules(t *testing.T) {
	units := Project(sampleChat())

	// System messages and tool-call-only assistant messages produce no unit.
	require.Len(t, units, 3)

	assert.Equal(t, KindUserText, units[0].Kind)
	assert.Equal(t, "show me AAPL", units[0].Text)

	assert.Equal(t, KindStock, units[1].Kind)
	stock, err := decodePayload[chattypes.Stock](units[1].Payload)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", stock.Symbol)

	assert.Equal(t, KindBotText, units[2].Kind)
	assert.Equal(t, "Anything else?", units[2].Text)
}

func TestProject_StableIDs(t *testing.T) {
	units := Project(sampleChat())
	require.Len(t, units, 3)
	assert.Equal(t, "chat-1-1", units[0].ID)
	assert.Equal(t, "chat-1-3", units[1].ID)
	assert.Equal(t, "chat-1-4", units[2].ID)
}

func TestProject_Idempotent(t *testing.T) {
	chat := sampleChat()
	first := Project(chat)
	second := Project(chat)
	assert.Equal(t, first, second)
}

func TestProject_AfterStoreRoundTrip(t *testing.T) {
	chat := sampleChat()

	// A store round trip turns typed payloads into generic JSON maps; the
	// projection must produce the same cards either way.
	raw, err := json.Marshal(chat)
	require.NoError(t, err)
	var restored chattypes.Chat
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, Project(chat), Project(&restored))
}

func TestProject_MultipleResultsInOneMessage(t *testing.T) {
	chat := &chattypes.Chat{
		ID: "chat-2",
		Messages: []chattypes.Message{
			{ID: "m0", Role: chattypes.RoleTool, ToolResults: []chattypes.ToolResult{
				{CallID: "c1", Name: chattypes.ToolShowStockPrice, Payload: chattypes.Stock{Symbol: "AAPL"}},
				{CallID: "c2", Name: chattypes.ToolShowStockPrice, Payload: chattypes.Stock{Symbol: "MSFT"}},
			}},
		},
	}

	units := Project(chat)
	require.Len(t, units, 2)
	assert.Equal(t, "chat-2-0", units[0].ID)
	assert.Equal(t, "chat-2-0-1", units[1].ID)
}

func TestProject_UnknownToolName(t *testing.T) {
	chat := &chattypes.Chat{
		ID: "chat-3",
		Messages: []chattypes.Message{
			{ID: "m0", Role: chattypes.RoleTool, ToolResults: []chattypes.ToolResult{
				{CallID: "c1", Name: "futureTool", Payload: map[string]any{"x": 1}},
			}},
		},
	}
	assert.Empty(t, Project(chat))
}

func TestPurchasePayload(t *testing.T) {
	unit := PurchaseCard("u1", chattypes.Purchase{
		Symbol:         "AAPL",
		Price:          100,
		NumberOfShares: 10,
		Status:         chattypes.PurchaseRequiresAction,
	})

	purchase, err := PurchasePayload(unit)
	require.NoError(t, err)
	assert.Equal(t, 10, purchase.NumberOfShares)

	_, err = PurchasePayload(BotText("u2", "hello"))
	assert.Error(t, err)
}

func TestRenderer_PlainOutput(t *testing.T) {
	r := NewPlainRenderer()

	assert.Equal(t, "> hi", r.Render(UserText("u1", "hi")))
	assert.Equal(t, "Searching...", r.Render(Spinner("u2", "Searching...")))

	card := r.Render(Stocks("u3", []chattypes.Stock{{Symbol: "AAPL", Price: 187.3, Delta: 1.2}}))
	assert.Contains(t, card, "AAPL")
	assert.Contains(t, card, "187.30")
}
