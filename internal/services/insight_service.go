package services

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
)

// opportunityTTL bounds how long grounded results are reused per sector.
const opportunityTTL = 30 * time.Minute

// InsightServiceProvider defines the interface for dashboard insights.
type InsightServiceProvider interface {
	Skills(ctx context.Context, account models.Account, refresh bool) ([]models.SkillScore, error)
	Quiz(ctx context.Context, sector models.Sector) ([]models.QuizQuestion, error)
	Opportunities(ctx context.Context, sector models.Sector) ([]models.Opportunity, error)
}

type InsightService struct {
	store         storage.Store
	gateway       synthesis.GatewayProvider
	opportunities *expirable.LRU[models.Sector, []models.Opportunity]
}

func NewInsightService(store storage.Store, gateway synthesis.GatewayProvider) *InsightService {
	return &InsightService{
		store:         store,
		gateway:       gateway,
		opportunities: expirable.NewLRU[models.Sector, []models.Opportunity](len(models.Sectors), nil, opportunityTTL),
	}
}

// Skills returns the skill analysis stored with the active roadmap, or runs a
// fresh one when there is none or refresh is set.
func (s *InsightService) Skills(ctx context.Context, account models.Account, refresh bool) ([]models.SkillScore, error) {
	if r := account.ActiveRoadmap(); r != nil && len(r.SkillAnalysis) > 0 && !refresh {
		return r.SkillAnalysis, nil
	}
	profile, err := profileFor(ctx, s.store, account)
	if err != nil {
		return nil, err
	}
	return s.gateway.SynthesizeAnalysis(ctx, profile.Sector, synthesis.ProfileSummary(profile))
}

func (s *InsightService) Quiz(ctx context.Context, sector models.Sector) ([]models.QuizQuestion, error) {
	if !sector.Valid() {
		return nil, ErrInvalidInput
	}
	return s.gateway.GenerateQuiz(ctx, sector)
}

func (s *InsightService) Opportunities(ctx context.Context, sector models.Sector) ([]models.Opportunity, error) {
	if !sector.Valid() {
		return nil, ErrInvalidInput
	}
	if cached, ok := s.opportunities.Get(sector); ok {
		return cached, nil
	}
	found, err := s.gateway.FetchOpportunities(ctx, sector)
	if err != nil {
		return nil, err
	}
	s.opportunities.Add(sector, found)
	return found, nil
}
