package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// Share amount bounds for the purchase tool. Amounts outside the range
// settle to the expired variant instead of requires_action.
const (
	minPurchaseShares = 1
	maxPurchaseShares = 1000
)

const (
	defaultPurchaseShares = 100
	defaultDeveloperCount = 5
)

// progressPause is the simulated work interval between placeholder states.
const progressPause = time.Second

// NewBuiltinRegistry creates a registry populated with the demo tool set.
func NewBuiltinRegistry(opts ...Option) (*Registry, error) {
	r := NewRegistry(opts...)
	builtins := []*Tool{
		listStocksTool(),
		showStockPriceTool(),
		showStockPurchaseTool(),
		getEventsTool(),
		getDevelopersTool(),
	}
	for _, tool := range builtins {
		if err := r.Register(tool); err != nil {
			return nil, fmt.Errorf("register builtin: %w", err)
		}
	}
	return r, nil
}

func listStocksTool() *Tool {
	return &Tool{
		Name:        chattypes.ToolListStocks,
		Description: "List three imaginary stocks that are trending.",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"stocks": map[string]any{
					"type":        "array",
					"description": "The stocks to list",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"symbol": map[string]any{"type": "string", "description": "The symbol of the stock"},
							"price":  map[string]any{"type": "number", "description": "The price of the stock"},
							"delta":  map[string]any{"type": "number", "description": "The change in price of the stock"},
						},
					},
				},
			},
			Required: []string{"stocks"},
		},
		Handler: func(ctx context.Context, inv *Invocation) error {
			var args struct {
				Stocks []chattypes.Stock `json:"stocks"`
			}
			if err := decodeArguments(inv.Call().Arguments, &args); err != nil {
				return err
			}
			if err := inv.Yield(ui.Spinner(inv.UnitID(), "Loading stocks...")); err != nil {
				return err
			}
			inv.Pause(ctx, progressPause)
			// Demonstration tool: echoes the model-supplied list unchanged.
			return inv.Settle(ui.Stocks(inv.UnitID(), args.Stocks), args.Stocks, "")
		},
	}
}

func showStockPriceTool() *Tool {
	return &Tool{
		Name:        chattypes.ToolShowStockPrice,
		Description: "Get the current stock price of a given stock or currency. Use this to show the price to the user.",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"symbol": map[string]any{"type": "string", "description": "The name or symbol of the stock or currency. e.g. DOGE/AAPL/USD."},
				"price":  map[string]any{"type": "number", "description": "The price of the stock."},
				"delta":  map[string]any{"type": "number", "description": "The change in price of the stock"},
			},
			Required: []string{"symbol", "price", "delta"},
		},
		Handler: func(ctx context.Context, inv *Invocation) error {
			var args chattypes.Stock
			if err := decodeArguments(inv.Call().Arguments, &args); err != nil {
				return err
			}
			if err := inv.Yield(ui.Spinner(inv.UnitID(), "Loading price for "+args.Symbol+"...")); err != nil {
				return err
			}
			inv.Pause(ctx, progressPause)
			return inv.Settle(ui.Stock(inv.UnitID(), args), args, "")
		},
	}
}

func showStockPurchaseTool() *Tool {
	return &Tool{
		Name:        chattypes.ToolShowStockPurchase,
		Description: "Show price and the UI to purchase a stock or currency. Use this if the user wants to purchase a stock or currency.",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"symbol":         map[string]any{"type": "string", "description": "The name or symbol of the stock or currency. e.g. DOGE/AAPL/USD."},
				"price":          map[string]any{"type": "number", "description": "The price of the stock."},
				"numberOfShares": map[string]any{"type": "number", "description": "The number of shares to purchase. Optional, defaults to 100."},
			},
			Required: []string{"symbol", "price"},
		},
		Defaults: map[string]any{
			"numberOfShares": defaultPurchaseShares,
		},
		Handler: func(_ context.Context, inv *Invocation) error {
			var args struct {
				Symbol         string  `json:"symbol"`
				Price          float64 `json:"price"`
				NumberOfShares int     `json:"numberOfShares"`
			}
			if err := decodeArguments(inv.Call().Arguments, &args); err != nil {
				return err
			}

			purchase := chattypes.Purchase{
				Symbol:         args.Symbol,
				Price:          args.Price,
				NumberOfShares: args.NumberOfShares,
			}
			if args.NumberOfShares < minPurchaseShares || args.NumberOfShares > maxPurchaseShares {
				purchase.Status = chattypes.PurchaseExpired
				return inv.Settle(
					ui.BotText(inv.UnitID(), "Invalid amount"),
					purchase,
					"[User has selected an invalid amount]",
				)
			}
			purchase.Status = chattypes.PurchaseRequiresAction
			return inv.Settle(ui.PurchaseCard(inv.UnitID(), purchase), purchase, "")
		},
	}
}

func getEventsTool() *Tool {
	return &Tool{
		Name:        chattypes.ToolGetEvents,
		Description: "List funny imaginary events between user highlighted dates that describe stock activity.",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"events": map[string]any{
					"type":        "array",
					"description": "The events to list",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"date":        map[string]any{"type": "string", "description": "The date of the event, in ISO-8601 format"},
							"headline":    map[string]any{"type": "string", "description": "The headline of the event"},
							"description": map[string]any{"type": "string", "description": "The description of the event"},
						},
					},
				},
			},
			Required: []string{"events"},
		},
		Handler: func(ctx context.Context, inv *Invocation) error {
			var args struct {
				Events []chattypes.Event `json:"events"`
			}
			if err := decodeArguments(inv.Call().Arguments, &args); err != nil {
				return err
			}
			if err := inv.Yield(ui.Spinner(inv.UnitID(), "Loading events...")); err != nil {
				return err
			}
			inv.Pause(ctx, progressPause)
			return inv.Settle(ui.Events(inv.UnitID(), args.Events), args.Events, "")
		},
	}
}

func getDevelopersTool() *Tool {
	return &Tool{
		Name:        chattypes.ToolGetDevelopers,
		Description: "Get a list of undervalued developers based on GitHub data.",
		InputSchema: &JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"count": map[string]any{"type": "integer", "description": "The number of developers to retrieve. Default is 5."},
			},
		},
		Defaults: map[string]any{
			"count": defaultDeveloperCount,
		},
		Handler: func(ctx context.Context, inv *Invocation) error {
			var args struct {
				Count int `json:"count"`
			}
			if err := decodeArguments(inv.Call().Arguments, &args); err != nil {
				return err
			}

			for _, status := range []string{
				"Searching GitHub profiles...",
				"Evaluating repositories...",
				"Analyzing contribution quality...",
			} {
				if err := inv.Yield(ui.Spinner(inv.UnitID(), status)); err != nil {
					return err
				}
				inv.Pause(ctx, progressPause)
			}

			dataset, err := developerDataset()
			if err != nil {
				return err
			}
			count := args.Count
			if count < 0 {
				count = 0
			}
			if count > len(dataset) {
				count = len(dataset)
			}
			developers := dataset[:count]
			return inv.Settle(ui.Developers(inv.UnitID(), developers), developers, "")
		},
	}
}

// decodeArguments normalizes a JSON argument map into a typed argument
// struct via a JSON round trip.
func decodeArguments(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
