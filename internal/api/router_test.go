package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/database"
	"github.com/isdelr/stratum-be/internal/models"
	"github.com/isdelr/stratum-be/internal/services"
	"github.com/isdelr/stratum-be/internal/storage"
	"github.com/isdelr/stratum-be/internal/synthesis"
	"github.com/isdelr/stratum-be/internal/websocket"
)

// stubGateway answers every call with canned data unless fail is set.
type stubGateway struct {
	mu   sync.Mutex
	fail error
	n    int
}

func (g *stubGateway) failWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fail = err
}

func (g *stubGateway) err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fail
}

func (g *stubGateway) Synthesize(_ context.Context, p models.Profile) (models.RoadmapResult, error) {
	if err := g.err(); err != nil {
		return models.RoadmapResult{}, err
	}
	g.mu.Lock()
	g.n++
	id := "roadmap-" + string(rune('0'+g.n))
	g.mu.Unlock()
	return models.RoadmapResult{
		ID:            id,
		Goal:          p.Goal,
		MissingSkills: []string{"FHIR"},
		Steps: []models.RoadmapStep{
			{Week: 1, Topic: "FHIR", Tasks: []string{"read", "build"}, Resources: []string{}, EstimatedWeeks: 1},
		},
		ReadinessScore: 70,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

func (g *stubGateway) SynthesizeAnalysis(context.Context, models.Sector, string) ([]models.SkillScore, error) {
	if err := g.err(); err != nil {
		return nil, err
	}
	return []models.SkillScore{{Subject: "FHIR", Current: 20, Required: 80, FullMark: 100}}, nil
}

func (g *stubGateway) SynthesizePortfolio(context.Context, models.Profile) (models.PortfolioStrategy, error) {
	return models.PortfolioStrategy{Tagline: "Builder"}, g.err()
}

func (g *stubGateway) GenerateQuiz(context.Context, models.Sector) ([]models.QuizQuestion, error) {
	return []models.QuizQuestion{{Question: "Q?", Options: []string{"a", "b", "c", "d"}}}, g.err()
}

func (g *stubGateway) FetchOpportunities(context.Context, models.Sector) ([]models.Opportunity, error) {
	return []models.Opportunity{{Title: "Fellowship"}}, g.err()
}

func (g *stubGateway) Rewrite(_ context.Context, text string) (string, error) {
	return strings.ToUpper(text), g.err()
}

func (g *stubGateway) MentorReply(_ context.Context, _ models.Sector, _ string, _ []models.ChatMessage, message string) (string, error) {
	if err := g.err(); err != nil {
		return "", err
	}
	return "Re: " + message, nil
}

func (g *stubGateway) ConciergeReply(_ context.Context, _ []models.ChatMessage, message string) (string, error) {
	if err := g.err(); err != nil {
		return "", err
	}
	return "Guide: " + message, nil
}

type testServer struct {
	handler http.Handler
	gateway *stubGateway
	hub     *websocket.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	store := storage.NewMemoryStore()
	tokens, err := auth.NewTokens("test-secret")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	gateway := &stubGateway{}
	accounts := services.NewAccountService(store, auth.BcryptHasher{Cost: bcrypt.MinCost})
	sessions := services.NewSessionService(store, time.Hour)
	events := services.NewEventService(db)
	progress := services.NewProgressService(store, accounts, events, hub)

	reg := prometheus.NewRegistry()
	handler := NewRouter(Dependencies{
		Hub:            hub,
		Tokens:         tokens,
		Sessions:       sessions,
		Auth:           services.NewAuthService(accounts, sessions, tokens, events),
		Events:         events,
		Assessment:     services.NewAssessmentService(store),
		Roadmaps:       services.NewRoadmapService(store, gateway, accounts, sessions, progress, events, hub),
		Progress:       progress,
		Insights:       services.NewInsightService(store, gateway),
		Portfolio:      services.NewPortfolioService(store, gateway),
		Mentor:         services.NewMentorService(store, gateway),
		Concierge:      services.NewConciergeService(store, gateway),
		Gatherer:       reg,
		Synthesis:      "stub",
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{handler: handler, gateway: gateway, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Ada", "email": email, "password": "password123", "sector": string(models.SectorHealthcare),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res.Token
}

// completeAssessment fills every step of the draft.
func (s *testServer) completeAssessment(t *testing.T, token string) {
	t.Helper()
	steps := []struct {
		step string
		body map[string]interface{}
	}{
		{"skills", map[string]interface{}{"add": []string{"Python", "SQL"}, "done": true}},
		{"level", map[string]interface{}{"level": "Intermediate", "studyHoursPerDay": 2, "done": true}},
		{"goal", map[string]interface{}{"goal": "Health data engineer"}},
	}
	for _, st := range steps {
		rec := s.do(t, http.MethodPut, "/api/v1/assessment/draft/"+st.step, token, st.body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestSignupLoginAndMe(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), auth.CookieName+"=")
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"name": "Ada", "email": "ADA@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token   string         `json:"token"`
		Account models.Account `json:"account"`
	}
	decodeBody(t, rec, &login)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me models.Account
	decodeBody(t, rec, &me)
	assert.Equal(t, login.Account.ID, me.ID)
	assert.Equal(t, models.SectorHealthcare, me.Sector)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/api/v1/auth/me", "/api/v1/roadmap", "/api/v1/events", "/api/v1/mentor/messages"} {
		rec := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := s.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/assessment/sectors", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssessmentToRoadmapFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@example.com")

	rec := s.do(t, http.MethodGet, "/api/v1/roadmap", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/assessment/submit", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/assessment/draft/colour", token, map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	s.completeAssessment(t, token)
	rec = s.do(t, http.MethodPost, "/api/v1/assessment/submit", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var roadmap models.RoadmapResult
	decodeBody(t, rec, &roadmap)
	assert.Equal(t, "Health data engineer", roadmap.Goal)
	assert.Len(t, roadmap.SkillAnalysis, 1)

	// The draft is gone once the roadmap is stored.
	rec = s.do(t, http.MethodGet, "/api/v1/assessment/draft", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var draft struct {
		Skills []string `json:"skills"`
	}
	decodeBody(t, rec, &draft)
	assert.Empty(t, draft.Skills)

	rec = s.do(t, http.MethodPost, "/api/v1/roadmap/progress", token, map[string]int{"week": 1, "taskIndex": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var view services.RoadmapView
	decodeBody(t, rec, &view)
	assert.Equal(t, 50, view.Overall)

	rec = s.do(t, http.MethodPost, "/api/v1/roadmap/progress", token, map[string]int{"week": 9, "taskIndex": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/roadmap/regenerate", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/roadmap", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &view)
	assert.Equal(t, 0, view.Overall)
	assert.NotEqual(t, roadmap.ID, view.Roadmap.ID)

	rec = s.do(t, http.MethodGet, "/api/v1/events?limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []models.Event
	decodeBody(t, rec, &events)
	assert.Equal(t, services.EventRoadmapGenerated, events[0].Type)
}

func TestSynthesisFailuresAreRetryable(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@example.com")
	s.completeAssessment(t, token)

	cases := []struct {
		reason synthesis.Reason
		status int
	}{
		{synthesis.ReasonTimeout, http.StatusGatewayTimeout},
		{synthesis.ReasonNotConfigured, http.StatusServiceUnavailable},
		{synthesis.ReasonSchemaMismatch, http.StatusBadGateway},
		{synthesis.ReasonNetwork, http.StatusBadGateway},
	}
	for _, tc := range cases {
		s.gateway.failWith(&synthesis.Failure{Op: "roadmap", Reason: tc.reason})
		rec := s.do(t, http.MethodPost, "/api/v1/assessment/submit", token, nil)
		require.Equal(t, tc.status, rec.Code, string(tc.reason))

		var body struct {
			Reason    string `json:"reason"`
			Retryable bool   `json:"retryable"`
		}
		decodeBody(t, rec, &body)
		assert.Equal(t, string(tc.reason), body.Reason)
		assert.True(t, body.Retryable)
	}

	// The draft survives, so a retry succeeds without re-entering answers.
	s.gateway.failWith(nil)
	rec := s.do(t, http.MethodPost, "/api/v1/assessment/submit", token, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestInsightsPortfolioAndMentor(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@example.com")

	rec := s.do(t, http.MethodGet, "/api/v1/insights/opportunities?sector=Fintech", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/insights/quiz?sector=Underwater", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/insights/skills", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/portfolio/rewrite", token, map[string]string{"text": "made a site"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"text":"MADE A SITE"}`, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/v1/portfolio/strategy", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/mentor/messages", token, map[string]string{"message": "Hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	var reply models.ChatMessage
	decodeBody(t, rec, &reply)
	assert.Equal(t, "Re: Hello", reply.Text)

	rec = s.do(t, http.MethodGet, "/api/v1/mentor/messages", token, nil)
	var history []models.ChatMessage
	decodeBody(t, rec, &history)
	assert.Len(t, history, 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/mentor/messages", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/concierge/messages", token, map[string]string{"message": "Where is my roadmap?"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &reply)
	assert.Equal(t, "Guide: Where is my roadmap?", reply.Text)

	rec = s.do(t, http.MethodGet, "/api/v1/concierge/messages", token, nil)
	decodeBody(t, rec, &history)
	assert.Len(t, history, 2)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","synthesis":"stub"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebSocketNotifications(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ada@example.com")
	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	header := http.Header{"Authorization": {"Bearer " + token}}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"

	_, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := gorilla.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	require.NoError(t, conn.WriteJSON(websocket.Message{Action: "ping"}))
	var msg websocket.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.ActionPong, msg.Action)

	// The pong proves the client is attached, so the roadmap notice reaches it.
	s.completeAssessment(t, token)
	rec := s.do(t, http.MethodPost, "/api/v1/assessment/submit", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, websocket.ActionRoadmapReady, msg.Action)
}
