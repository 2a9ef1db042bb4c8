package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
)

const (
	maxMentorMessage = 2000
	maxStoredHistory = 100
)

// MentorServiceProvider defines the interface for the mentor chat.
type MentorServiceProvider interface {
	History(ctx context.Context, accountID string) ([]models.ChatMessage, error)
	Send(ctx context.Context, account models.Account, message string) (models.ChatMessage, error)
	Clear(ctx context.Context, accountID string) error
}

// MentorService keeps a chat history per account. The sector mentor answers
// in the persona of the account's sector; the concierge answers questions
// about the app and keeps a separate history.
type MentorService struct {
	store storage.Store
	key   func(accountID string) string
	ask   func(ctx context.Context, account models.Account, history []models.ChatMessage, message string) (string, error)
	mu    sync.Mutex
	now   func() time.Time
}

func NewMentorService(store storage.Store, gateway synthesis.GatewayProvider) *MentorService {
	return &MentorService{
		store: store,
		key:   storage.MentorHistoryKey,
		ask: func(ctx context.Context, account models.Account, history []models.ChatMessage, message string) (string, error) {
			return gateway.MentorReply(ctx, account.Sector, account.Name, history, message)
		},
		now: time.Now,
	}
}

// NewConciergeService returns the app guide chat.
func NewConciergeService(store storage.Store, gateway synthesis.GatewayProvider) *MentorService {
	return &MentorService{
		store: store,
		key:   storage.ConciergeHistoryKey,
		ask: func(ctx context.Context, _ models.Account, history []models.ChatMessage, message string) (string, error) {
			return gateway.ConciergeReply(ctx, history, message)
		},
		now: time.Now,
	}
}

func (s *MentorService) History(ctx context.Context, accountID string) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	err := storage.GetJSON(ctx, s.store, s.key(accountID), &history)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return []models.ChatMessage{}, nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn().Err(err).Str("account_id", accountID).Str("reason", "StorageCorrupt").Msg("Discarding unreadable chat history")
		return []models.ChatMessage{}, nil
	case err != nil:
		return nil, err
	}
	return history, nil
}

// Send asks for a reply and stores both turns. A failed reply stores nothing.
func (s *MentorService) Send(ctx context.Context, account models.Account, message string) (models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" || len(message) > maxMentorMessage {
		return models.ChatMessage{}, fmt.Errorf("%w: message must be 1-%d characters", ErrInvalidInput, maxMentorMessage)
	}

	history, err := s.History(ctx, account.ID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	asked := models.ChatMessage{Role: models.RoleUser, Text: message, Timestamp: s.now().UTC()}

	text, err := s.ask(ctx, account, history, message)
	if err != nil {
		return models.ChatMessage{}, err
	}
	reply := models.ChatMessage{Role: models.RoleModel, Text: text, Timestamp: s.now().UTC()}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another send may have landed while the reply was in flight.
	history, err = s.History(ctx, account.ID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	history = append(history, asked, reply)
	if len(history) > maxStoredHistory {
		history = history[len(history)-maxStoredHistory:]
	}
	if err := storage.PutJSON(ctx, s.store, s.key(account.ID), history); err != nil {
		return models.ChatMessage{}, err
	}
	return reply, nil
}

func (s *MentorService) Clear(ctx context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, s.key(accountID))
}
