// Package chat contains the lifecycle orchestrator: it drives one user turn
// end-to-end, from appending the user message through model dispatch, tool
// execution, and persistence of the updated conversation state.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devscout/internal/dispatch"
	"devscout/internal/logger"
	"devscout/internal/store"
	"devscout/internal/testutils"
	"devscout/internal/tools"
	"devscout/internal/ui"
	"devscout/pkg/chattypes"
)

// maxTitleLength bounds the conversation title derived from the first user
// message.
const maxTitleLength = 100

// genericFailureText is shown when a turn fails for a reason the user cannot
// act on directly.
const genericFailureText = "Something went wrong while answering. Please try again."

// TurnResult is the product of one completed turn.
type TurnResult struct {
	TurnID string
	// Display is the final display unit for the turn: accumulated assistant
	// text, a settled tool card, or an error unit on failure paths that
	// still complete the call.
	Display ui.DisplayUnit
}

// Orchestrator drives turns against explicit conversation state. It holds no
// per-conversation state itself; the caller passes the chat in and receives
// the mutated chat back through the same pointer, so multiple conversations
// can run through one orchestrator independently.
type Orchestrator struct {
	dispatcher dispatch.Dispatcher
	registry   *tools.Registry
	store      store.Store
	sleep      func(context.Context, time.Duration)
}

// Option adjusts orchestrator construction.
type Option func(*Orchestrator)

// WithSleep replaces the pause function used by the purchase confirmation
// flow. Tests pass a no-op.
func WithSleep(sleep func(context.Context, time.Duration)) Option {
	return func(o *Orchestrator) {
		o.sleep = sleep
	}
}

// New creates an orchestrator. The store may be nil, in which case turns are
// never persisted.
func New(dispatcher dispatch.Dispatcher, registry *tools.Registry, st store.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		dispatcher: dispatcher,
		registry:   registry,
		store:      st,
		sleep:      contextSleep,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewChat creates empty conversation state for a user. UserID is empty for
// unauthenticated sessions, which disables persistence.
func NewChat(userID string) *chattypes.Chat {
	id := testutils.GenerateUUID()
	return &chattypes.Chat{
		ID:        id,
		UserID:    userID,
		Path:      "/chat/" + id,
		CreatedAt: testutils.GetCurrentTime(),
	}
}

// SubmitUserMessage runs one turn: it appends the user message, dispatches
// the history to the model, and either streams assistant text or executes the
// requested tool. Intermediate display units flow through the sink as the
// turn progresses; the final unit is returned. On success exactly one
// assistant text message, or one ToolCall/ToolResult message pair, has been
// appended to the chat.
func (o *Orchestrator) SubmitUserMessage(ctx context.Context, chat *chattypes.Chat, text string, sink ui.Sink) (*TurnResult, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}

	turnID := testutils.GenerateUUID()
	logger.TurnEvent(turnID, "start", "chat", chat.ID)

	userMsg := chattypes.Message{
		ID:        testutils.GenerateUUID(),
		Role:      chattypes.RoleUser,
		Content:   text,
		CreatedAt: testutils.GetCurrentTime(),
	}
	chat.Append(userMsg)
	if chat.Title == "" {
		chat.Title = deriveTitle(text)
	}
	emit(sink, ui.UserText(userMsg.ID, text))

	reply, err := o.dispatcher.Dispatch(ctx, dispatchHistory(chat), o.registry.Descriptors())
	if err != nil {
		return o.failTurn(turnID, chat, sink, &DispatchError{Err: err})
	}

	var result *TurnResult
	switch {
	case reply.ToolCall != nil:
		result, err = o.runToolTurn(ctx, turnID, chat, *reply.ToolCall, sink)
	case reply.Stream != nil:
		result, err = o.runTextTurn(turnID, chat, reply.Stream, sink)
	default:
		err = &DispatchError{Err: errors.New("reply carries neither text nor tool call")}
	}
	if err != nil {
		return o.failTurn(turnID, chat, sink, err)
	}

	o.persist(ctx, chat)
	logger.TurnEvent(turnID, "done")
	return result, nil
}

// runTextTurn accumulates text fragments into one evolving display unit and
// commits the full text as a single assistant message once the stream ends.
// Fragments are applied strictly in arrival order, so every emitted unit is a
// prefix of the final text.
func (o *Orchestrator) runTextTurn(turnID string, chat *chattypes.Chat, stream <-chan dispatch.Chunk, sink ui.Sink) (*TurnResult, error) {
	unitID := "msg-" + turnID
	var accumulated string
	for chunk := range stream {
		if chunk.Err != nil {
			return nil, &DispatchError{Err: chunk.Err}
		}
		if chunk.Content != "" {
			accumulated += chunk.Content
			emit(sink, ui.BotText(unitID, accumulated))
		}
		if chunk.Done {
			break
		}
	}

	chat.Append(chattypes.Message{
		ID:        testutils.GenerateUUID(),
		Role:      chattypes.RoleAssistant,
		Content:   accumulated,
		CreatedAt: testutils.GetCurrentTime(),
	})
	final := ui.BotText(unitID, accumulated)
	emit(sink, final)
	return &TurnResult{TurnID: turnID, Display: final}, nil
}

// runToolTurn executes the requested tool through its lifecycle and, once
// settled, appends the ToolCall/ToolResult pair. Nothing is appended when
// execution fails, so a failed turn never leaves an orphaned ToolCall.
func (o *Orchestrator) runToolTurn(ctx context.Context, turnID string, chat *chattypes.Chat, call chattypes.ToolCall, sink ui.Sink) (*TurnResult, error) {
	if call.ID == "" {
		call.ID = testutils.GenerateUUID()
	}

	outcome, err := o.registry.Execute(ctx, call, sink)
	if err != nil {
		var argErr *tools.ArgumentError
		if errors.As(err, &argErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToolArguments, argErr.Err)
		}
		return nil, err
	}

	chat.Append(
		chattypes.Message{
			ID:        testutils.GenerateUUID(),
			Role:      chattypes.RoleAssistant,
			ToolCalls: []chattypes.ToolCall{outcome.Call},
			CreatedAt: testutils.GetCurrentTime(),
		},
		chattypes.Message{
			ID:          testutils.GenerateUUID(),
			Role:        chattypes.RoleTool,
			Name:        outcome.Call.Name,
			ToolResults: []chattypes.ToolResult{outcome.Result},
			CreatedAt:   testutils.GetCurrentTime(),
		},
	)
	if outcome.SystemNote != "" {
		chat.Append(systemMessage(outcome.SystemNote))
	}

	emit(sink, outcome.Final)
	return &TurnResult{TurnID: turnID, Display: outcome.Final}, nil
}

// failTurn records a failed turn: a system message noting the failure, an
// error display unit through the sink, and the typed error back to the
// caller. The user message appended at the start of the turn stays in place.
func (o *Orchestrator) failTurn(turnID string, chat *chattypes.Chat, sink ui.Sink, err error) (*TurnResult, error) {
	logger.TurnEvent(turnID, "failed", "error", err)
	chat.Append(systemMessage(fmt.Sprintf("[Turn failed: %v]", err)))
	emit(sink, ui.ErrorUnit("error-"+turnID, genericFailureText))
	return nil, err
}

// persist saves the updated conversation. Persistence is best effort: a save
// failure is logged and the turn's UI result is still returned, trading
// durability for responsiveness.
func (o *Orchestrator) persist(ctx context.Context, chat *chattypes.Chat) {
	if o.store == nil || chat.UserID == "" {
		return
	}
	if err := o.store.Save(ctx, chat); err != nil {
		logger.Warn("Failed to persist conversation", "chat", chat.ID, "error", err)
	}
}

// dispatchHistory shapes the conversation for the model: roles, content, and
// names only, with transcript-local fields stripped.
func dispatchHistory(chat *chattypes.Chat) []chattypes.Message {
	history := make([]chattypes.Message, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		history = append(history, chattypes.Message{
			Role:        msg.Role,
			Content:     msg.Content,
			Name:        msg.Name,
			ToolCalls:   msg.ToolCalls,
			ToolResults: msg.ToolResults,
		})
	}
	return history
}

func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > maxTitleLength {
		runes = runes[:maxTitleLength]
	}
	return string(runes)
}

func systemMessage(content string) chattypes.Message {
	return chattypes.Message{
		ID:        testutils.GenerateUUID(),
		Role:      chattypes.RoleSystem,
		Content:   content,
		CreatedAt: testutils.GetCurrentTime(),
	}
}

func emit(sink ui.Sink, unit ui.DisplayUnit) {
	if sink != nil {
		sink(unit)
	}
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
