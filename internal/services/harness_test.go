package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/database"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
	"github.com/isdelr/stratum-be/internal/websocket"
)

// fakeGateway returns canned results. Hooks, when set, replace the defaults.
type fakeGateway struct {
	roadmap  func(ctx context.Context, p models.Profile) (models.RoadmapResult, error)
	analysis func(ctx context.Context) ([]models.SkillScore, error)
	mentor   func(history []models.ChatMessage, message string) (string, error)

	roadmapCalls       atomic.Int32
	opportunitiesCalls atomic.Int32
	seq                atomic.Int32
}

func (g *fakeGateway) Synthesize(ctx context.Context, p models.Profile) (models.RoadmapResult, error) {
	g.roadmapCalls.Add(1)
	if g.roadmap != nil {
		return g.roadmap(ctx, p)
	}
	return sampleRoadmap(g.seq.Add(1), p.Goal), nil
}

func (g *fakeGateway) SynthesizeAnalysis(ctx context.Context, _ models.Sector, _ string) ([]models.SkillScore, error) {
	if g.analysis != nil {
		return g.analysis(ctx)
	}
	return []models.SkillScore{{Subject: "FHIR", Current: 30, Required: 80, FullMark: 100}}, nil
}

func (g *fakeGateway) SynthesizePortfolio(context.Context, models.Profile) (models.PortfolioStrategy, error) {
	return models.PortfolioStrategy{Tagline: "Builder of clinical data systems"}, nil
}

func (g *fakeGateway) GenerateQuiz(context.Context, models.Sector) ([]models.QuizQuestion, error) {
	return []models.QuizQuestion{{Question: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 1}}, nil
}

func (g *fakeGateway) FetchOpportunities(context.Context, models.Sector) ([]models.Opportunity, error) {
	g.opportunitiesCalls.Add(1)
	return []models.Opportunity{{Title: "Intern", Organization: "Acme", Type: "Internship"}}, nil
}

func (g *fakeGateway) Rewrite(_ context.Context, text string) (string, error) {
	return "Delivered: " + text, nil
}

func (g *fakeGateway) MentorReply(_ context.Context, _ models.Sector, _ string, history []models.ChatMessage, message string) (string, error) {
	if g.mentor != nil {
		return g.mentor(history, message)
	}
	return "Answer to " + message, nil
}

func (g *fakeGateway) ConciergeReply(_ context.Context, _ []models.ChatMessage, message string) (string, error) {
	return "Guide: " + message, nil
}

func sampleRoadmap(n int32, goal string) models.RoadmapResult {
	return models.RoadmapResult{
		ID:             "roadmap-" + string(rune('0'+n)),
		Goal:           goal,
		MissingSkills:  []string{"FHIR"},
		Recommendation: "Start with interoperability.",
		Steps: []models.RoadmapStep{
			{Week: 1, Topic: "FHIR", Description: "Resources", Tasks: []string{"read", "build"}, Resources: []string{}, EstimatedWeeks: 1},
			{Week: 2, Topic: "HIPAA", Description: "Privacy", Tasks: []string{"audit"}, Resources: []string{}, EstimatedWeeks: 1},
		},
		ReadinessScore: 80,
		BaselineScore:  30,
		GeneratedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][]websocket.Message
}

func (n *recordingNotifier) NotifyAccount(accountID string, msg websocket.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.messages == nil {
		n.messages = make(map[string][]websocket.Message)
	}
	n.messages[accountID] = append(n.messages[accountID], msg)
}

func (n *recordingNotifier) actions(accountID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.messages[accountID] {
		out = append(out, m.Action)
	}
	return out
}

type harness struct {
	store      storage.Store
	accounts   *AccountService
	sessions   *SessionService
	events     *EventService
	auth       *AuthService
	assessment *AssessmentService
	progress   *ProgressService
	roadmaps   *RoadmapService
	mentor     *MentorService
	concierge  *MentorService
	insights   *InsightService
	portfolio  *PortfolioService
	gateway    *fakeGateway
	notifier   *recordingNotifier
	tokens     *auth.Tokens
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	store := storage.NewMemoryStore()
	tokens, err := auth.NewTokens("test-secret")
	require.NoError(t, err)

	h := &harness{store: store, gateway: &fakeGateway{}, notifier: &recordingNotifier{}, tokens: tokens}
	h.accounts = NewAccountService(store, auth.BcryptHasher{Cost: bcrypt.MinCost})
	h.sessions = NewSessionService(store, time.Hour)
	h.events = NewEventService(db)
	h.auth = NewAuthService(h.accounts, h.sessions, tokens, h.events)
	h.assessment = NewAssessmentService(store)
	h.progress = NewProgressService(store, h.accounts, h.events, h.notifier)
	h.roadmaps = NewRoadmapService(store, h.gateway, h.accounts, h.sessions, h.progress, h.events, h.notifier)
	h.mentor = NewMentorService(store, h.gateway)
	h.concierge = NewConciergeService(store, h.gateway)
	h.insights = NewInsightService(store, h.gateway)
	h.portfolio = NewPortfolioService(store, h.gateway)
	return h
}

// signup registers an account and returns its live session.
func (h *harness) signup(t *testing.T, email string) *models.Session {
	t.Helper()
	res, err := h.auth.Signup(context.Background(), "Ada", email, "password123", models.SectorHealthcare)
	require.NoError(t, err)
	return &res.Session
}

func testProfile() models.Profile {
	return models.Profile{
		Name:             "Ada",
		Goal:             "Health data engineer",
		Skills:           []string{"Python", "SQL"},
		Sector:           models.SectorHealthcare,
		Level:            models.LevelAdvanced,
		StudyHoursPerDay: 4,
	}
}

var _ synthesis.GatewayProvider = (*fakeGateway)(nil)
