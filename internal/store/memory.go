package store

import (
	"context"
	"sort"
	"sync"

	"devscout/pkg/chattypes"
)

// MemoryStore keeps conversations in process memory. It clones on both
// Save and Load so callers can never mutate stored state through shared
// slices.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[string]*chattypes.Chat
}

// NewMemoryStore creates an empty in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: make(map[string]*chattypes.Chat)}
}

func (s *MemoryStore) Save(_ context.Context, chat *chattypes.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[chat.ID] = chattypes.CloneChat(chat)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*chattypes.Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return chattypes.CloneChat(chat), nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.chats))
	for id, chat := range s.chats {
		if chat.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
