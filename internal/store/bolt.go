package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"devscout/pkg/chattypes"
)

var (
	chatsBucket = []byte("chats")
	ownerBucket = []byte("owners")
)

// BoltStore persists conversations in a single BoltDB file. Each
// conversation is one JSON-encoded value keyed by id; a second bucket maps
// "userID/chatID" keys back to ids so List stays a prefix scan.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the conversation database at path.
func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, e := tx.CreateBucketIfNotExists(chatsBucket); e != nil {
			return e
		}
		_, e := tx.CreateBucketIfNotExists(ownerBucket)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize conversation database: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Save(_ context.Context, chat *chattypes.Chat) error {
	enc, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("failed to encode conversation %s: %w", chat.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if e := tx.Bucket(chatsBucket).Put([]byte(chat.ID), enc); e != nil {
			return e
		}
		return tx.Bucket(ownerBucket).Put(ownerKey(chat.UserID, chat.ID), []byte(chat.ID))
	})
}

func (s *BoltStore) Load(_ context.Context, id string) (*chattypes.Chat, error) {
	var chat *chattypes.Chat
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chatsBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		chat = &chattypes.Chat{}
		return json.Unmarshal(v, chat)
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *BoltStore) List(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	prefix := ownerKey(userID, "")
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(ownerBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			ids = append(ids, string(v))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func ownerKey(userID, chatID string) []byte {
	return []byte(userID + "/" + chatID)
}
