package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devscout/internal/logger"
	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// ErrAlreadySettled is returned when a handler emits after settling.
var ErrAlreadySettled = errors.New("tool invocation already settled")

// callState tracks the per-call lifecycle: Pending on invocation, then any
// number of Intermediate placeholder emissions, then exactly one Settled.
type callState int

const (
	statePending callState = iota
	stateIntermediate
	stateSettled
)

// Outcome is the terminal product of one settled invocation.
type Outcome struct {
	// Call is the executed tool call with defaults applied, suitable for
	// persisting alongside the result.
	Call   chattypes.ToolCall
	Result chattypes.ToolResult
	Final  ui.DisplayUnit
	// SystemNote, when non-empty, is appended to the conversation as a
	// system-role message recording a UI-visible side effect.
	SystemNote string
}

// Invocation carries one in-flight tool call through its lifecycle. Handlers
// receive it with validated, defaulted arguments and must call Settle exactly
// once.
type Invocation struct {
	call  chattypes.ToolCall
	sink  ui.Sink
	sleep func(context.Context, time.Duration)
	state callState

	outcome *Outcome
}

// Call returns the tool call being executed, with defaults already applied
// to its arguments.
func (inv *Invocation) Call() chattypes.ToolCall {
	return inv.call
}

// UnitID returns the stable display unit id for this call. Every placeholder
// and the final unit share it, so each emission replaces the previous one.
func (inv *Invocation) UnitID() string {
	return "call-" + inv.call.ID
}

// Yield emits a placeholder display unit, replacing any previous one.
func (inv *Invocation) Yield(unit ui.DisplayUnit) error {
	if inv.state == stateSettled {
		return ErrAlreadySettled
	}
	inv.state = stateIntermediate
	logger.ToolEvent(inv.call.Name, inv.call.ID, "intermediate")
	if inv.sink != nil {
		inv.sink(unit)
	}
	return nil
}

// Pause suspends the handler between intermediate emissions, honoring
// context cancellation. Used to simulate progressive work.
func (inv *Invocation) Pause(ctx context.Context, d time.Duration) {
	inv.sleep(ctx, d)
}

// Settle finalizes the invocation with its result payload, final display
// unit, and optional system note. Settling twice is an error; nothing may be
// emitted afterwards.
func (inv *Invocation) Settle(final ui.DisplayUnit, payload any, systemNote string) error {
	if inv.state == stateSettled {
		return ErrAlreadySettled
	}
	inv.state = stateSettled
	inv.outcome = &Outcome{
		Call: inv.call,
		Result: chattypes.ToolResult{
			CallID:  inv.call.ID,
			Name:    inv.call.Name,
			Payload: payload,
		},
		Final:      final,
		SystemNote: systemNote,
	}
	logger.ToolEvent(inv.call.Name, inv.call.ID, "settled")
	return nil
}

// settledOutcome returns the outcome, or an error when the handler returned
// without settling.
func (inv *Invocation) settledOutcome() (*Outcome, error) {
	if inv.state != stateSettled || inv.outcome == nil {
		return nil, fmt.Errorf("tool %q returned without settling call %s", inv.call.Name, inv.call.ID)
	}
	return inv.outcome, nil
}

// contextSleep waits for the duration or until the context is cancelled.
func contextSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
