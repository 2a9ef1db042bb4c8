package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
)

const (
	sessionCacheSize = 1024
	// sessionCacheTTL bounds how long a session cleared by another instance
	// sharing the store is still honoured here.
	sessionCacheTTL = 30 * time.Second
)

// SessionServiceProvider defines the interface for the session store.
type SessionServiceProvider interface {
	Open(ctx context.Context, account models.Account) (models.Session, error)
	Current(ctx context.Context, sessionID string) (*models.Session, error)
	Set(ctx context.Context, sessionID string, account models.Account) error
	RefreshAccount(ctx context.Context, account models.Account) error
	Clear(ctx context.Context, sessionID string) error
	Sweep(ctx context.Context) (int, error)
}

// SessionService persists logged-in sessions, each holding a snapshot of its account.
type SessionService struct {
	store storage.Store
	ttl   time.Duration
	cache *expirable.LRU[string, models.Session]
	// mu guards the per-account session index.
	mu  sync.Mutex
	now func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(store storage.Store, ttl time.Duration) *SessionService {
	return &SessionService{
		store: store,
		ttl:   ttl,
		cache: expirable.NewLRU[string, models.Session](sessionCacheSize, nil, sessionCacheTTL),
		now:   time.Now,
	}
}

// Open starts a session for account.
func (s *SessionService) Open(ctx context.Context, account models.Account) (models.Session, error) {
	now := s.now().UTC()
	session := models.Session{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		Account:   account.Sanitized(),
		CreatedAt: now,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}
	if err := s.write(ctx, session); err != nil {
		return models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.index(ctx, account.ID)
	if err != nil {
		return models.Session{}, err
	}
	if err := s.saveIndex(ctx, account.ID, append(ids, session.ID)); err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// Current returns the live session, or nil when it is absent, expired or
// unreadable. Unreadable records are removed.
func (s *SessionService) Current(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	if session, ok := s.cache.Get(sessionID); ok {
		return s.checkExpiry(ctx, session)
	}

	var session models.Session
	err := storage.GetJSON(ctx, s.store, storage.SessionKey(sessionID), &session)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn().Err(err).Str("session_id", sessionID).Str("reason", "StorageCorrupt").Msg("Discarding unreadable session")
		if err := s.store.Delete(ctx, storage.SessionKey(sessionID)); err != nil {
			return nil, err
		}
		return nil, nil
	case err != nil:
		return nil, err
	}
	s.cache.Add(sessionID, session)
	return s.checkExpiry(ctx, session)
}

func (s *SessionService) checkExpiry(ctx context.Context, session models.Session) (*models.Session, error) {
	if session.Expired(s.now()) {
		if err := s.Clear(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &session, nil
}

// Set replaces the account snapshot held by an existing session.
func (s *SessionService) Set(ctx context.Context, sessionID string, account models.Account) error {
	var session models.Session
	if err := storage.GetJSON(ctx, s.store, storage.SessionKey(sessionID), &session); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	if session.AccountID != account.ID {
		return fmt.Errorf("session %s belongs to another account", sessionID)
	}
	session.Account = account.Sanitized()
	return s.write(ctx, session)
}

// RefreshAccount rewrites the snapshot in every session of the account.
func (s *SessionService) RefreshAccount(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.index(ctx, account.ID)
	if err != nil {
		return err
	}
	live := ids[:0]
	for _, id := range ids {
		err := s.Set(ctx, id, account)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrCorrupt) {
			s.cache.Remove(id)
			continue
		}
		if err != nil {
			return err
		}
		live = append(live, id)
	}
	return s.saveIndex(ctx, account.ID, live)
}

// Clear ends a session. Clearing an unknown session is not an error.
func (s *SessionService) Clear(ctx context.Context, sessionID string) error {
	var session models.Session
	err := storage.GetJSON(ctx, s.store, storage.SessionKey(sessionID), &session)
	if err != nil && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrCorrupt) {
		return err
	}

	s.cache.Remove(sessionID)
	if err := s.store.Delete(ctx, storage.SessionKey(sessionID)); err != nil {
		return err
	}
	if session.AccountID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ids, err := s.index(ctx, session.AccountID)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != sessionID {
			kept = append(kept, id)
		}
	}
	return s.saveIndex(ctx, session.AccountID, kept)
}

// Sweep deletes expired and unreadable sessions and returns how many were removed.
func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	keys, err := s.store.Keys(ctx, storage.SessionPrefix)
	if err != nil {
		return 0, err
	}
	now := s.now()
	removed := 0
	for _, key := range keys {
		id := strings.TrimPrefix(key, storage.SessionPrefix)
		var session models.Session
		err := storage.GetJSON(ctx, s.store, key, &session)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			continue
		case errors.Is(err, storage.ErrCorrupt):
			log.Warn().Err(err).Str("session_id", id).Str("reason", "StorageCorrupt").Msg("Discarding unreadable session")
		case err != nil:
			return removed, err
		case !session.Expired(now):
			continue
		}
		if err := s.Clear(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *SessionService) write(ctx context.Context, session models.Session) error {
	if err := storage.PutJSON(ctx, s.store, storage.SessionKey(session.ID), session); err != nil {
		return err
	}
	s.cache.Add(session.ID, session)
	return nil
}

func (s *SessionService) index(ctx context.Context, accountID string) ([]string, error) {
	var ids []string
	err := storage.GetJSON(ctx, s.store, storage.AccountSessionsKey(accountID), &ids)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrCorrupt) {
		return nil, nil
	}
	return ids, err
}

func (s *SessionService) saveIndex(ctx context.Context, accountID string, ids []string) error {
	if len(ids) == 0 {
		return s.store.Delete(ctx, storage.AccountSessionsKey(accountID))
	}
	return storage.PutJSON(ctx, s.store, storage.AccountSessionsKey(accountID), ids)
}
