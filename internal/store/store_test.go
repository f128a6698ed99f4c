package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devscout/pkg/chattypes"
)

func sampleChat(id, userID string) *chattypes.Chat {
	return &chattypes.Chat{
		ID:     id,
		Title:  "show me AAPL",
		UserID: userID,
		Path:   "/chat/" + id,
		Messages: []chattypes.Message{
			{ID: "m1", Role: chattypes.RoleUser, Content: "show me AAPL"},
			{ID: "m2", Role: chattypes.RoleAssistant, ToolCalls: []chattypes.ToolCall{
				{ID: "call-1", Name: chattypes.ToolShowStockPrice, Arguments: map[string]any{"symbol": "AAPL"}},
			}},
			{ID: "m3", Role: chattypes.RoleTool, Name: chattypes.ToolShowStockPrice, ToolResults: []chattypes.ToolResult{
				{CallID: "call-1", Name: chattypes.ToolShowStockPrice, Payload: chattypes.Stock{Symbol: "AAPL", Price: 187.3}},
			}},
		},
	}
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	chat := sampleChat("c1", "user-1")
	require.NoError(t, st.Save(ctx, chat))

	loaded, err := st.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, chat.Title, loaded.Title)
	require.Len(t, loaded.Messages, 3)

	// Mutating the loaded copy must not leak back into the store.
	loaded.Messages[0].Content = "tampered"
	again, err := st.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "show me AAPL", again.Messages[0].Content)
}

func TestMemoryStore_LoadNotFound(t *testing.T) {
	st := NewMemoryStore()
	_, err := st.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_List(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, sampleChat("c2", "user-1")))
	require.NoError(t, st.Save(ctx, sampleChat("c1", "user-1")))
	require.NoError(t, st.Save(ctx, sampleChat("c3", "user-2")))

	ids, err := st.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestMemoryStore_SaveReplacesSnapshot(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	chat := sampleChat("c1", "user-1")
	require.NoError(t, st.Save(ctx, chat))

	chat.Append(chattypes.Message{ID: "m4", Role: chattypes.RoleAssistant, Content: "done"})
	require.NoError(t, st.Save(ctx, chat))

	loaded, err := st.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, loaded.Messages, 4)
}

func TestBoltStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")
	st, err := OpenBolt(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close()) }()

	ctx := context.Background()
	chat := sampleChat("c1", "user-1")
	require.NoError(t, st.Save(ctx, chat))

	loaded, err := st.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, loaded.ID)
	assert.Equal(t, chat.Title, loaded.Title)
	require.Len(t, loaded.Messages, 3)

	// Tool payloads survive as generic JSON values after the round trip.
	require.Len(t, loaded.Messages[2].ToolResults, 1)
	payload, ok := loaded.Messages[2].ToolResults[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AAPL", payload["symbol"])
}

func TestBoltStore_LoadNotFound(t *testing.T) {
	st, err := OpenBolt(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	_, err = st.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBoltStore_ListByOwner(t *testing.T) {
	st, err := OpenBolt(filepath.Join(t.TempDir(), "chats.db"))
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	require.NoError(t, st.Save(ctx, sampleChat("c1", "user-1")))
	require.NoError(t, st.Save(ctx, sampleChat("c2", "user-2")))
	require.NoError(t, st.Save(ctx, sampleChat("c3", "user-1")))

	ids, err := st.List(ctx, "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "c3"}, ids)

	ids, err = st.List(ctx, "user-3")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBoltStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")

	st, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), sampleChat("c1", "user-1")))
	require.NoError(t, st.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", loaded.ID)
}
