package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
)

func TestSignupThenAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.accounts.CreateAccount(ctx, " Ada ", "Ada@Example.com ", "password123", models.SectorFintech)
	require.NoError(t, err)
	assert.Empty(t, created.PasswordHash)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "Ada", created.Name)

	authed, err := h.accounts.Authenticate(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, authed.ID)
	assert.Empty(t, authed.PasswordHash)
}

func TestCreateAccountRejectsDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.accounts.CreateAccount(ctx, "Ada", "ada@example.com", "password123", "")
	require.NoError(t, err)
	_, err = h.accounts.CreateAccount(ctx, "Other", "ADA@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestCreateAccountValidatesInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := map[string]struct {
		name, email, password string
		sector                models.Sector
	}{
		"bad email":      {"Ada", "not-an-email", "password123", ""},
		"short password": {"Ada", "ada@example.com", "short", ""},
		"blank name":     {"  ", "ada@example.com", "password123", ""},
		"unknown sector": {"Ada", "ada@example.com", "password123", "Space Mining"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := h.accounts.CreateAccount(ctx, tt.name, tt.email, tt.password, tt.sector)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAuthenticateFailuresLookAlike(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.accounts.CreateAccount(ctx, "Ada", "ada@example.com", "password123", "")
	require.NoError(t, err)

	_, err = h.accounts.Authenticate(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = h.accounts.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateAccountMergesFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.accounts.CreateAccount(ctx, "Ada", "ada@example.com", "password123", "")
	require.NoError(t, err)

	score := 55
	updated, err := h.accounts.UpdateAccount(ctx, models.Account{
		ID:              created.ID,
		Sector:          models.SectorSmartCity,
		Skills:          []string{"Go", " Go ", "SQL", ""},
		AssessmentScore: &score,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, models.SectorSmartCity, updated.Sector)
	assert.Equal(t, []string{"Go", "SQL"}, updated.Skills)
	require.NotNil(t, updated.AssessmentScore)
	assert.Equal(t, 55, *updated.AssessmentScore)

	// Credentials survive a profile update.
	_, err = h.accounts.Authenticate(ctx, "ada@example.com", "password123")
	assert.NoError(t, err)
}

func TestRoadmapRoundTripsThroughAccountStorage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.accounts.CreateAccount(ctx, "Ada", "ada@example.com", "password123", "")
	require.NoError(t, err)

	roadmap := sampleRoadmap(1, "Health data engineer")
	roadmap.FeaturedProjects = []models.FeaturedProject{{Title: "Portal", Difficulty: "Intermediate", Description: "FHIR portal", Milestones: []string{"MVP"}}}
	roadmap.SkillAnalysis = []models.SkillScore{{Subject: "FHIR", Current: 30, Required: 80, FullMark: 100}}
	roadmap.Steps[0].CourseLink = "https://example.com/fhir"
	roadmap.Steps[0].SuggestedCourses = []models.Course{{Title: "FHIR 101", Platform: "Coursera", URL: "https://example.com/c"}}
	_, err = h.accounts.UpdateAccount(ctx, models.Account{ID: created.ID, Roadmaps: []models.RoadmapResult{roadmap}})
	require.NoError(t, err)

	loaded, err := h.accounts.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Roadmaps, 1)
	assert.Equal(t, roadmap, loaded.Roadmaps[0])
}

// cannedProvider answers every synthesis call with the same text.
type cannedProvider string

func (cannedProvider) Name() string { return "canned" }

func (c cannedProvider) Generate(context.Context, synthesis.Request) (string, error) {
	return string(c), nil
}

func TestSynthesizedRoadmapRoundTripsThroughAccountStorage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.accounts.CreateAccount(ctx, "Ada", "ada@example.com", "password123", "")
	require.NoError(t, err)

	gateway := synthesis.NewGateway(cannedProvider(`{
	  "missingSkills": ["HL7 FHIR"],
	  "recommendation": "Start with interoperability.",
	  "roadmap": [
	    {"week": 1, "topic": "FHIR basics", "description": "Learn resources.", "tasks": ["Read docs"], "suggestedCourses": []},
	    {"week": 2, "topic": "Compliance", "description": "Privacy rules.", "tasks": ["Audit an app"]}
	  ],
	  "featuredProjects": [],
	  "readinessScore": 70,
	  "baselineScore": 30
	}`), 0, nil)
	roadmap, err := gateway.Synthesize(ctx, testProfile())
	require.NoError(t, err)
	roadmap.GeneratedAt = roadmap.GeneratedAt.Round(0)

	_, err = h.accounts.UpdateAccount(ctx, models.Account{ID: created.ID, Roadmaps: []models.RoadmapResult{roadmap}})
	require.NoError(t, err)

	loaded, err := h.accounts.GetAccount(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Roadmaps, 1)
	assert.Equal(t, roadmap, loaded.Roadmaps[0])
}

func TestGetAccountMissing(t *testing.T) {
	h := newHarness(t)
	_, err := h.accounts.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
