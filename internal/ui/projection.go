package ui

import (
	"encoding/json"
	"fmt"

	"devscout/pkg/chattypes"
)

// Project derives the renderable view of a conversation from its durable
// state alone. It is a pure function: calling it repeatedly on identical
// state yields identical units, so a client can rebuild its view after a
// reload from exactly what the store returns.
//
// Rules: system messages are omitted; user messages map to plain text units;
// assistant messages with text map to bot text units; assistant messages
// holding only tool calls produce no unit (the paired tool message carries
// the renderable result); tool messages map to the settled card for each
// result they hold, dispatched by tool name.
func Project(chat *chattypes.Chat) []DisplayUnit {
	units := make([]DisplayUnit, 0, len(chat.Messages))
	for i, msg := range chat.Messages {
		id := fmt.Sprintf("%s-%d", chat.ID, i)
		switch msg.Role {
		case chattypes.RoleSystem:
			continue
		case chattypes.RoleUser:
			units = append(units, UserText(id, msg.Content))
		case chattypes.RoleAssistant:
			if msg.Content != "" {
				units = append(units, BotText(id, msg.Content))
			}
		case chattypes.RoleTool:
			for j, result := range msg.ToolResults {
				unitID := id
				if j > 0 {
					unitID = fmt.Sprintf("%s-%d", id, j)
				}
				if unit, ok := resultUnit(unitID, result); ok {
					units = append(units, unit)
				}
			}
		}
	}
	return units
}

// resultUnit maps one settled tool result to its card, dispatched by tool
// name. Unknown tool names project nothing rather than failing: the durable
// state may have been written by a newer binary.
func resultUnit(id string, result chattypes.ToolResult) (DisplayUnit, bool) {
	switch result.Name {
	case chattypes.ToolListStocks:
		stocks, err := decodePayload[[]chattypes.Stock](result.Payload)
		if err != nil {
			return DisplayUnit{}, false
		}
		return Stocks(id, stocks), true
	case chattypes.ToolShowStockPrice:
		stock, err := decodePayload[chattypes.Stock](result.Payload)
		if err != nil {
			return DisplayUnit{}, false
		}
		return Stock(id, stock), true
	case chattypes.ToolShowStockPurchase:
		purchase, err := decodePayload[chattypes.Purchase](result.Payload)
		if err != nil {
			return DisplayUnit{}, false
		}
		return PurchaseCard(id, purchase), true
	case chattypes.ToolGetEvents:
		events, err := decodePayload[[]chattypes.Event](result.Payload)
		if err != nil {
			return DisplayUnit{}, false
		}
		return Events(id, events), true
	case chattypes.ToolGetDevelopers:
		developers, err := decodePayload[[]chattypes.Developer](result.Payload)
		if err != nil {
			return DisplayUnit{}, false
		}
		return Developers(id, developers), true
	}
	return DisplayUnit{}, false
}

// PurchasePayload extracts the typed purchase from a purchase card unit.
func PurchasePayload(unit DisplayUnit) (chattypes.Purchase, error) {
	if unit.Kind != KindPurchase {
		return chattypes.Purchase{}, fmt.Errorf("unit %s is not a purchase card", unit.ID)
	}
	return decodePayload[chattypes.Purchase](unit.Payload)
}

// decodePayload normalizes a tool result payload into its typed shape.
// Payloads arrive either as typed structs (same-process turn) or as decoded
// JSON maps (after a store round trip); a JSON re-encode handles both.
func decodePayload[T any](payload any) (T, error) {
	var out T
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
