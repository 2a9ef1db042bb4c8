package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
)

const maxRewriteLength = 4000

// PortfolioServiceProvider defines the interface for portfolio tooling.
type PortfolioServiceProvider interface {
	Strategy(ctx context.Context, account models.Account) (models.PortfolioStrategy, error)
	Rewrite(ctx context.Context, text string) (string, error)
}

type PortfolioService struct {
	store   storage.Store
	gateway synthesis.GatewayProvider
}

func NewPortfolioService(store storage.Store, gateway synthesis.GatewayProvider) *PortfolioService {
	return &PortfolioService{store: store, gateway: gateway}
}

// Strategy synthesizes a portfolio strategy from the account's latest profile.
func (s *PortfolioService) Strategy(ctx context.Context, account models.Account) (models.PortfolioStrategy, error) {
	profile, err := profileFor(ctx, s.store, account)
	if err != nil {
		return models.PortfolioStrategy{}, err
	}
	return s.gateway.SynthesizePortfolio(ctx, profile)
}

// Rewrite polishes a piece of portfolio or resume text.
func (s *PortfolioService) Rewrite(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxRewriteLength {
		return "", fmt.Errorf("%w: text must be 1-%d characters", ErrInvalidInput, maxRewriteLength)
	}
	return s.gateway.Rewrite(ctx, text)
}

// profileFor returns the saved profile snapshot, or one derived from the
// account when no assessment has completed yet.
func profileFor(ctx context.Context, store storage.Store, account models.Account) (models.Profile, error) {
	var profile models.Profile
	err := storage.GetJSON(ctx, store, storage.ProfileKey(account.ID), &profile)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrCorrupt) {
		return models.Profile{}, err
	}

	profile = models.Profile{
		Name:             account.Name,
		Skills:           append([]string{}, account.Skills...),
		Sector:           account.Sector,
		Level:            models.LevelBeginner,
		StudyHoursPerDay: models.MinStudyHours,
	}
	if r := account.ActiveRoadmap(); r != nil {
		profile.Goal = r.Goal
	}
	return profile, nil
}
