package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/progress"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/websocket"
)

// Notifier pushes a message to the connected clients of one account.
type Notifier interface {
	NotifyAccount(accountID string, msg websocket.Message)
}

// RoadmapView is the active roadmap together with its progress state.
type RoadmapView struct {
	Roadmap models.RoadmapResult `json:"roadmap"`
	Phases  []progress.PhaseView `json:"phases"`
	Overall int                  `json:"overall"`
}

// ProgressServiceProvider defines the interface for the progress tracker.
type ProgressServiceProvider interface {
	View(ctx context.Context, accountID string) (RoadmapView, error)
	Toggle(ctx context.Context, accountID string, week, taskIndex int) (RoadmapView, error)
	Reset(ctx context.Context, accountID, roadmapID string) error
}

// ProgressService persists task completion for each account's active roadmap.
type ProgressService struct {
	store    storage.Store
	accounts AccountServiceProvider
	events   EventServiceProvider
	notifier Notifier
	now      func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(store storage.Store, accounts AccountServiceProvider, events EventServiceProvider, notifier Notifier) *ProgressService {
	return &ProgressService{store: store, accounts: accounts, events: events, notifier: notifier, now: time.Now}
}

// View returns the active roadmap and its progress. A record bound to an older
// roadmap is treated as empty.
func (s *ProgressService) View(ctx context.Context, accountID string) (RoadmapView, error) {
	roadmap, err := s.active(ctx, accountID)
	if err != nil {
		return RoadmapView{}, err
	}
	record, err := s.load(ctx, accountID, roadmap.ID)
	if err != nil {
		return RoadmapView{}, err
	}
	return buildView(roadmap, record), nil
}

// Toggle flips one task of the active roadmap and persists immediately.
func (s *ProgressService) Toggle(ctx context.Context, accountID string, week, taskIndex int) (RoadmapView, error) {
	roadmap, err := s.active(ctx, accountID)
	if err != nil {
		return RoadmapView{}, err
	}
	step, ok := findStep(roadmap.Steps, week)
	if !ok || taskIndex < 0 || taskIndex >= len(step.Tasks) {
		return RoadmapView{}, fmt.Errorf("%w: week %d task %d", ErrInvalidTask, week, taskIndex)
	}

	record, err := s.load(ctx, accountID, roadmap.ID)
	if err != nil {
		return RoadmapView{}, err
	}
	wasComplete := record.Complete(step)
	record.Toggle(week, taskIndex)
	record.UpdatedAt = s.now().UTC()
	if err := storage.PutJSON(ctx, s.store, storage.ProgressKey(accountID), record); err != nil {
		return RoadmapView{}, err
	}

	if !wasComplete && record.Complete(step) {
		recordEvent(ctx, s.events, accountID, EventPhaseCompleted, "info", fmt.Sprintf("Completed week %d: %s", step.Week, step.Topic))
	}
	view := buildView(roadmap, record)
	if s.notifier != nil {
		s.notifier.NotifyAccount(accountID, websocket.NewProgressUpdated(roadmap.ID, view.Overall))
	}
	return view, nil
}

// Reset binds a fresh, empty record to roadmapID.
func (s *ProgressService) Reset(ctx context.Context, accountID, roadmapID string) error {
	record := progress.New(accountID, roadmapID)
	record.UpdatedAt = s.now().UTC()
	return storage.PutJSON(ctx, s.store, storage.ProgressKey(accountID), record)
}

func (s *ProgressService) active(ctx context.Context, accountID string) (models.RoadmapResult, error) {
	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return models.RoadmapResult{}, err
	}
	roadmap := account.ActiveRoadmap()
	if roadmap == nil {
		return models.RoadmapResult{}, ErrNoRoadmap
	}
	return *roadmap, nil
}

func (s *ProgressService) load(ctx context.Context, accountID, roadmapID string) (*progress.Record, error) {
	var record progress.Record
	err := storage.GetJSON(ctx, s.store, storage.ProgressKey(accountID), &record)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return progress.New(accountID, roadmapID), nil
	case errors.Is(err, storage.ErrCorrupt):
		log.Warn().Err(err).Str("account_id", accountID).Str("reason", "StorageCorrupt").Msg("Discarding unreadable progress record")
		return progress.New(accountID, roadmapID), nil
	case err != nil:
		return nil, err
	}
	if record.RoadmapID != roadmapID {
		return progress.New(accountID, roadmapID), nil
	}
	if record.Tasks == nil {
		record.Tasks = make(map[string]bool)
	}
	return &record, nil
}

func findStep(steps []models.RoadmapStep, week int) (models.RoadmapStep, bool) {
	for _, step := range steps {
		if step.Week == week {
			return step, true
		}
	}
	return models.RoadmapStep{}, false
}

func buildView(roadmap models.RoadmapResult, record *progress.Record) RoadmapView {
	return RoadmapView{
		Roadmap: roadmap,
		Phases:  record.Phases(roadmap.Steps),
		Overall: progress.Round(record.Overall(roadmap.Steps)),
	}
}
