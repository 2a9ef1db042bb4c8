package synthesis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stratum-be/internal/models"
)

// DefaultTimeout bounds every call to the content service.
const DefaultTimeout = 30 * time.Second

// mentorWindow is the number of prior turns sent with a chat message.
const mentorWindow = 10

var errEmpty = errors.New("content service returned no text")

// GatewayProvider is the set of synthesis operations used by the services.
type GatewayProvider interface {
	Synthesize(ctx context.Context, p models.Profile) (models.RoadmapResult, error)
	SynthesizeAnalysis(ctx context.Context, sector models.Sector, summary string) ([]models.SkillScore, error)
	SynthesizePortfolio(ctx context.Context, p models.Profile) (models.PortfolioStrategy, error)
	GenerateQuiz(ctx context.Context, sector models.Sector) ([]models.QuizQuestion, error)
	FetchOpportunities(ctx context.Context, sector models.Sector) ([]models.Opportunity, error)
	Rewrite(ctx context.Context, text string) (string, error)
	MentorReply(ctx context.Context, sector models.Sector, name string, history []models.ChatMessage, message string) (string, error)
	ConciergeReply(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

// Gateway is the only component that talks to the content service.
type Gateway struct {
	provider Provider
	timeout  time.Duration
	metrics  *Metrics
	now      func() time.Time
}

// NewGateway wraps provider. A nil provider yields a gateway whose every call
// fails with ReasonNotConfigured. A non-positive timeout selects DefaultTimeout.
func NewGateway(provider Provider, timeout time.Duration, metrics *Metrics) *Gateway {
	if provider == nil {
		provider = Unconfigured{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: provider, timeout: timeout, metrics: metrics, now: time.Now}
}

// ProviderName reports the backing provider.
func (g *Gateway) ProviderName() string { return g.provider.Name() }

// run performs exactly one provider call under the gateway timeout. Failures
// are recorded here; a returned text is recorded by accept or reject once the
// caller has decoded it.
func (g *Gateway) run(ctx context.Context, op string, req Request) (string, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Generate(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		f := classify(ctx, op, err)
		g.metrics.observe(op, g.provider.Name(), string(f.Reason), elapsed)
		log.Warn().Err(err).Str("op", op).Str("provider", g.provider.Name()).Str("reason", string(f.Reason)).Msg("Synthesis call failed")
		return "", elapsed, f
	}
	if strings.TrimSpace(text) == "" {
		g.metrics.observe(op, g.provider.Name(), string(ReasonEmptyResponse), elapsed)
		log.Warn().Str("op", op).Str("provider", g.provider.Name()).Msg("Synthesis returned empty response")
		return "", elapsed, &Failure{Op: op, Reason: ReasonEmptyResponse, Err: errEmpty}
	}
	return text, elapsed, nil
}

func (g *Gateway) accept(op string, elapsed time.Duration) {
	g.metrics.observe(op, g.provider.Name(), "ok", elapsed)
}

func (g *Gateway) reject(op string, elapsed time.Duration, err error) error {
	g.metrics.observe(op, g.provider.Name(), string(ReasonSchemaMismatch), elapsed)
	log.Warn().Err(err).Str("op", op).Msg("Synthesis response rejected")
	return schemaMismatch(op, err)
}

// Synthesize produces a roadmap for p. The result carries a fresh id, the
// profile goal and the generation time.
func (g *Gateway) Synthesize(ctx context.Context, p models.Profile) (models.RoadmapResult, error) {
	const op = "roadmap"
	system, user := roadmapPrompt(p)
	text, elapsed, err := g.run(ctx, op, Request{System: system, User: user, Schema: roadmapSchema})
	if err != nil {
		return models.RoadmapResult{}, err
	}
	payload, err := decode[roadmapPayload](text, KindObject, "")
	if err != nil {
		return models.RoadmapResult{}, g.reject(op, elapsed, err)
	}
	result, err := payload.toResult()
	if err != nil {
		return models.RoadmapResult{}, g.reject(op, elapsed, err)
	}
	g.accept(op, elapsed)
	result.ID = uuid.NewString()
	result.Goal = p.Goal
	result.GeneratedAt = g.now().UTC()
	return result, nil
}

// SynthesizeAnalysis scores the user against the skills their sector requires.
func (g *Gateway) SynthesizeAnalysis(ctx context.Context, sector models.Sector, summary string) ([]models.SkillScore, error) {
	const op = "analysis"
	system, user := analysisPrompt(sector, summary)
	text, elapsed, err := g.run(ctx, op, Request{System: system, User: user, Schema: analysisSchema})
	if err != nil {
		return nil, err
	}
	payload, err := decode[analysisPayload](text, KindAny, "skills")
	if err != nil {
		return nil, g.reject(op, elapsed, err)
	}
	g.accept(op, elapsed)
	return payload.toScores(), nil
}

func (g *Gateway) SynthesizePortfolio(ctx context.Context, p models.Profile) (models.PortfolioStrategy, error) {
	const op = "portfolio"
	system, user := portfolioPrompt(p)
	text, elapsed, err := g.run(ctx, op, Request{System: system, User: user, Schema: portfolioSchema})
	if err != nil {
		return models.PortfolioStrategy{}, err
	}
	payload, err := decode[portfolioPayload](text, KindObject, "")
	if err != nil {
		return models.PortfolioStrategy{}, g.reject(op, elapsed, err)
	}
	g.accept(op, elapsed)
	return payload.toStrategy(), nil
}

func (g *Gateway) GenerateQuiz(ctx context.Context, sector models.Sector) ([]models.QuizQuestion, error) {
	const op = "quiz"
	system, user := quizPrompt(sector)
	text, elapsed, err := g.run(ctx, op, Request{System: system, User: user, Schema: quizSchema})
	if err != nil {
		return nil, err
	}
	payload, err := decode[quizPayload](text, KindAny, "questions")
	if err != nil {
		return nil, g.reject(op, elapsed, err)
	}
	g.accept(op, elapsed)
	return payload.toQuestions(), nil
}

// FetchOpportunities uses grounded search, so the provider cannot be asked for
// structured output and the array is pulled from free text.
func (g *Gateway) FetchOpportunities(ctx context.Context, sector models.Sector) ([]models.Opportunity, error) {
	const op = "opportunities"
	system, user := opportunitiesPrompt(sector)
	text, elapsed, err := g.run(ctx, op, Request{System: system, User: user, Grounded: true})
	if err != nil {
		return nil, err
	}
	payload, err := decode[opportunitiesPayload](text, KindArray, "items")
	if err != nil {
		return nil, g.reject(op, elapsed, err)
	}
	g.accept(op, elapsed)
	return payload.toOpportunities(), nil
}

func (g *Gateway) Rewrite(ctx context.Context, text string) (string, error) {
	const op = "rewrite"
	system, user := rewritePrompt(text)
	out, elapsed, err := g.run(ctx, op, Request{System: system, User: user})
	if err != nil {
		return "", err
	}
	g.accept(op, elapsed)
	return strings.TrimSpace(out), nil
}

// MentorReply answers message in the persona for sector, with the most recent
// history turns as context.
func (g *Gateway) MentorReply(ctx context.Context, sector models.Sector, name string, history []models.ChatMessage, message string) (string, error) {
	return g.chat(ctx, "mentor", mentorPrompt(sector, name), history, message)
}

// ConciergeReply answers questions about using the app itself.
func (g *Gateway) ConciergeReply(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	return g.chat(ctx, "concierge", conciergePrompt(), history, message)
}

func (g *Gateway) chat(ctx context.Context, op, system string, history []models.ChatMessage, message string) (string, error) {
	if len(history) > mentorWindow {
		history = history[len(history)-mentorWindow:]
	}
	turns := make([]Turn, len(history))
	for i, m := range history {
		turns[i] = Turn{Role: string(m.Role), Text: m.Text}
	}
	out, elapsed, err := g.run(ctx, op, Request{
		System:      system,
		User:        message,
		History:     turns,
		Temperature: ptr(float32(0.7)),
	})
	if err != nil {
		return "", err
	}
	g.accept(op, elapsed)
	return strings.TrimSpace(out), nil
}
