package chat

import (
	"context"
	"fmt"
	"time"

	"devscout/internal/logger"
	"devscout/internal/testutils"
	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// purchasePause is the simulated settlement interval between purchase
// progress updates.
const purchasePause = time.Second

// ConfirmPurchase completes a purchase the user accepted in the purchase
// card. It is not a registry tool, the UI invokes it directly, but it follows
// the same lifecycle: two delayed progress updates through the sink, then a
// settled confirmation unit plus a system message recording the total cost.
func (o *Orchestrator) ConfirmPurchase(ctx context.Context, chat *chattypes.Chat, symbol string, price float64, amount int, sink ui.Sink) (*TurnResult, error) {
	turnID := testutils.GenerateUUID()
	unitID := "purchase-" + turnID
	logger.TurnEvent(turnID, "confirm_purchase", "symbol", symbol, "amount", amount)

	emit(sink, ui.Spinner(unitID, fmt.Sprintf("Purchasing %d $%s...", amount, symbol)))
	o.sleep(ctx, purchasePause)
	emit(sink, ui.Spinner(unitID, fmt.Sprintf("Purchasing %d $%s... working on it...", amount, symbol)))
	o.sleep(ctx, purchasePause)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := float64(amount) * price
	final := ui.BotText(unitID, fmt.Sprintf("You have successfully purchased %d $%s. Total cost: $%.2f", amount, symbol, total))
	chat.Append(systemMessage(fmt.Sprintf("[User has purchased %d shares of %s at $%g. Total cost = %g]", amount, symbol, price, total)))
	emit(sink, final)

	o.persist(ctx, chat)
	logger.TurnEvent(turnID, "done")
	return &TurnResult{TurnID: turnID, Display: final}, nil
}
