// Package storage provides the durable key-value layer that backs accounts,
// sessions, drafts, progress records and mentor history. Values are UTF-8 JSON.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("storage: key not found")
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("storage: corrupt record")
)

// Store is a durable key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// GetJSON loads key into v. A value that is not valid JSON for v yields ErrCorrupt.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// PutJSON marshals v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// Key helpers. Every durable record lives under one of these.
func AccountKey(id string) string { return "account:" + id }
func AccountEmailKey(email string) string { return "account-email:" + email }
func SessionKey(id string) string { return "session:" + id }
func AccountSessionsKey(accountID string) string { return "account-sessions:" + accountID }
func ProgressKey(accountID string) string { return "progress:" + accountID }
func ProfileKey(accountID string) string { return "profile:" + accountID }
func DraftKey(accountID string) string { return "assessment-draft:" + accountID }
func MentorHistoryKey(accountID string) string { return "mentor-history:" + accountID }
func ConciergeHistoryKey(accountID string) string { return "concierge-history:" + accountID }

const (
	AccountPrefix = "account:"
	SessionPrefix = "session:"
)
