// Package ui turns conversation state into renderable display units.
// A display unit is an opaque renderable value keyed by a stable id; emitting
// a unit with an id that is already on screen replaces it in place, which is
// how streaming text and progressive tool placeholders update.
package ui

import "devscout/pkg/chattypes"

// Kind discriminates the renderable shape carried by a display unit.
type Kind string

const (
	KindUserText   Kind = "user_text"
	KindBotText    Kind = "bot_text"
	KindSpinner    Kind = "spinner"
	KindStocks     Kind = "stocks"
	KindStock      Kind = "stock"
	KindPurchase   Kind = "purchase"
	KindEvents     Kind = "events"
	KindDevelopers Kind = "developers"
	KindError      Kind = "error"
)

// DisplayUnit is one renderable element of the conversation view.
type DisplayUnit struct {
	ID      string // stable; a later unit with the same ID replaces this one
	Kind    Kind
	Text    string // text body or progress status, depending on Kind
	Payload any    // tool payload for card kinds
	Pending bool   // true for skeleton and intermediate placeholders
}

// Sink receives display units as a turn progresses. Units arrive in emission
// order; a unit whose ID matches an earlier one supersedes it.
type Sink func(DisplayUnit)

// UserText builds the display unit for a plain user message.
func UserText(id, text string) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindUserText, Text: text}
}

// BotText builds the display unit for assistant text content.
func BotText(id, text string) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindBotText, Text: text}
}

// Spinner builds a pending placeholder with a progress status line.
func Spinner(id, status string) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindSpinner, Text: status, Pending: true}
}

// Stocks builds the settled card for a list of stocks.
func Stocks(id string, stocks []chattypes.Stock) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindStocks, Payload: stocks}
}

// Stock builds the settled card for a single stock price.
func Stock(id string, stock chattypes.Stock) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindStock, Payload: stock}
}

// PurchaseCard builds the settled card for a stock purchase.
func PurchaseCard(id string, purchase chattypes.Purchase) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindPurchase, Payload: purchase}
}

// Events builds the settled card for a list of market events.
func Events(id string, events []chattypes.Event) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindEvents, Payload: events}
}

// Developers builds the settled card for a developer list.
func Developers(id string, developers []chattypes.Developer) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindDevelopers, Payload: developers}
}

// ErrorUnit builds the display unit for a failed turn.
func ErrorUnit(id, text string) DisplayUnit {
	return DisplayUnit{ID: id, Kind: KindError, Text: text}
}
