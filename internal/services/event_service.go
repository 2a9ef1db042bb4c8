package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
)

// Event types recorded in the activity trail.
const (
	EventAccountCreated   = "account.created"
	EventAccountLogin     = "account.login"
	EventAccountUpdated   = "account.updated"
	EventRoadmapGenerated = "roadmap.generated"
	EventSynthesisFailed  = "synthesis.failed"
	EventStaleDiscarded   = "roadmap.discarded"
	EventPhaseCompleted   = "roadmap.phase_completed"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, accountID, eventType, level, message string) error
	GetRecentEvents(ctx context.Context, accountID string, limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db  *sql.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, accountID, eventType, level, message string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Type:      eventType,
		Level:     level,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO events (id, account_id, type, level, message, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, event.ID, event.AccountID, event.Type, event.Level, event.Message, event.CreatedAt)
	return err
}

// GetRecentEvents retrieves the most recent events of one account, newest first.
func (s *EventService) GetRecentEvents(ctx context.Context, accountID string, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, account_id, type, level, message, created_at FROM events WHERE account_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.AccountID, &event.Type, &event.Level, &event.Message, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// recordEvent writes an event and only logs on failure; the activity trail never
// fails the operation it describes.
func recordEvent(ctx context.Context, events EventServiceProvider, accountID, eventType, level, message string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, accountID, eventType, level, message); err != nil {
		log.Error().Err(err).Str("account_id", accountID).Str("type", eventType).Msg("Failed to record event")
	}
}
