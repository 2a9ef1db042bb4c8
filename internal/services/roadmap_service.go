package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
	"github.com/isdelr/stratum-be/internal/websocket"
)

// RoadmapServiceProvider defines the interface for the roadmap pipeline.
type RoadmapServiceProvider interface {
	Generate(ctx context.Context, session *models.Session, profile models.Profile) (models.RoadmapResult, error)
	Regenerate(ctx context.Context, session *models.Session) (models.RoadmapResult, error)
	Active(ctx context.Context, accountID string) (RoadmapView, error)
	LastProfile(ctx context.Context, accountID string) (models.Profile, error)
}

// RoadmapService turns a submitted profile into the account's active roadmap.
type RoadmapService struct {
	store    storage.Store
	gateway  synthesis.GatewayProvider
	accounts AccountServiceProvider
	sessions SessionServiceProvider
	progress ProgressServiceProvider
	events   EventServiceProvider
	notifier Notifier
}

// NewRoadmapService creates a new RoadmapService.
func NewRoadmapService(
	store storage.Store,
	gateway synthesis.GatewayProvider,
	accounts AccountServiceProvider,
	sessions SessionServiceProvider,
	progress ProgressServiceProvider,
	events EventServiceProvider,
	notifier Notifier,
) *RoadmapService {
	return &RoadmapService{
		store:    store,
		gateway:  gateway,
		accounts: accounts,
		sessions: sessions,
		progress: progress,
		events:   events,
		notifier: notifier,
	}
}

// Generate synthesizes a roadmap and skill analysis for profile and, if both
// succeed and the session is still the one that asked, installs the result as
// the account's active roadmap. Nothing is written on any failure.
//
// The work is detached from the caller's cancellation; each synthesis call is
// bounded by the gateway timeout instead.
func (s *RoadmapService) Generate(ctx context.Context, session *models.Session, profile models.Profile) (models.RoadmapResult, error) {
	ctx = context.WithoutCancel(ctx)
	profile = profile.Clone()

	result, err := s.synthesize(ctx, profile)
	if err != nil {
		s.reportFailure(ctx, session.AccountID, err)
		return models.RoadmapResult{}, err
	}

	current, err := s.sessions.Current(ctx, session.ID)
	if err != nil {
		return models.RoadmapResult{}, err
	}
	if current == nil || current.AccountID != session.AccountID {
		log.Warn().Str("account_id", session.AccountID).Str("session_id", session.ID).Msg("Discarding roadmap for a session that has ended")
		recordEvent(ctx, s.events, session.AccountID, EventStaleDiscarded, "warn", "A generated roadmap was discarded because the session ended")
		return models.RoadmapResult{}, ErrStaleSession
	}

	if err := s.persist(ctx, session.AccountID, profile, result); err != nil {
		return models.RoadmapResult{}, err
	}

	recordEvent(ctx, s.events, session.AccountID, EventRoadmapGenerated, "info", fmt.Sprintf("Roadmap generated for %q", profile.Goal))
	if s.notifier != nil {
		s.notifier.NotifyAccount(session.AccountID, websocket.NewRoadmapReady(result.ID, result.Goal))
	}
	log.Info().Str("account_id", session.AccountID).Str("roadmap_id", result.ID).Int("steps", len(result.Steps)).Msg("Roadmap generated")
	return result, nil
}

// Regenerate reruns the pipeline from the last submitted profile.
func (s *RoadmapService) Regenerate(ctx context.Context, session *models.Session) (models.RoadmapResult, error) {
	profile, err := s.LastProfile(ctx, session.AccountID)
	if err != nil {
		return models.RoadmapResult{}, err
	}
	return s.Generate(ctx, session, profile)
}

func (s *RoadmapService) Active(ctx context.Context, accountID string) (RoadmapView, error) {
	return s.progress.View(ctx, accountID)
}

// LastProfile returns the profile snapshot saved by the last successful generation.
func (s *RoadmapService) LastProfile(ctx context.Context, accountID string) (models.Profile, error) {
	var profile models.Profile
	err := storage.GetJSON(ctx, s.store, storage.ProfileKey(accountID), &profile)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrCorrupt) {
		return models.Profile{}, ErrNoProfile
	}
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// synthesize runs the roadmap and skill-analysis calls concurrently. Both must
// succeed; the first failure cancels the other.
func (s *RoadmapService) synthesize(ctx context.Context, profile models.Profile) (models.RoadmapResult, error) {
	g, gctx := errgroup.WithContext(ctx)

	var analysis []models.SkillScore
	var result models.RoadmapResult
	g.Go(func() error {
		var err error
		analysis, err = s.gateway.SynthesizeAnalysis(gctx, profile.Sector, synthesis.ProfileSummary(profile))
		return err
	})
	g.Go(func() error {
		var err error
		result, err = s.gateway.Synthesize(gctx, profile)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.RoadmapResult{}, err
	}

	result.SkillAnalysis = analysis
	return result, nil
}

// persist stores a generated roadmap. The account write is the commit point:
// a failure before it leaves the previous roadmap active.
func (s *RoadmapService) persist(ctx context.Context, accountID string, profile models.Profile, result models.RoadmapResult) error {
	if err := storage.PutJSON(ctx, s.store, storage.ProfileKey(accountID), profile); err != nil {
		return s.persistFailed(accountID, "profile", err)
	}

	score := profile.Level.Score()
	account, err := s.accounts.UpdateAccount(ctx, models.Account{
		ID:              accountID,
		Sector:          profile.Sector,
		Skills:          profile.Skills,
		AssessmentScore: &score,
		Roadmaps:        []models.RoadmapResult{result},
	})
	if err != nil {
		return s.persistFailed(accountID, "account", err)
	}

	// Progress bound to the previous roadmap id already reads as empty.
	if err := s.progress.Reset(ctx, accountID, result.ID); err != nil {
		return s.persistFailed(accountID, "progress", err)
	}
	if err := s.sessions.RefreshAccount(ctx, account); err != nil {
		return s.persistFailed(accountID, "sessions", err)
	}
	return nil
}

func (s *RoadmapService) persistFailed(accountID, step string, err error) error {
	log.Error().Err(err).Str("account_id", accountID).Str("step", step).Msg("Failed to persist roadmap")
	return fmt.Errorf("persist roadmap %s: %w", step, err)
}

func (s *RoadmapService) reportFailure(ctx context.Context, accountID string, err error) {
	f, ok := synthesis.AsFailure(err)
	if !ok {
		log.Error().Err(err).Str("account_id", accountID).Msg("Roadmap synthesis failed")
		return
	}
	log.Warn().Err(err).Str("account_id", accountID).Str("op", f.Op).Str("reason", string(f.Reason)).Msg("Roadmap synthesis failed")
	recordEvent(ctx, s.events, accountID, EventSynthesisFailed, "warn", fmt.Sprintf("%s synthesis failed: %s", f.Op, f.Reason))
	if s.notifier != nil {
		s.notifier.NotifyAccount(accountID, websocket.NewSynthesisFailed(f.Op, string(f.Reason)))
	}
}
