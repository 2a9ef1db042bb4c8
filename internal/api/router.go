package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/isdelr/stratum-be/internal/api/handlers"
	"github.com/isdelr/stratum-be/internal/auth"
	"github.com/isdelr/stratum-be/internal/services"
	"github.com/isdelr/stratum-be/internal/websocket"
)

// Dependencies is everything the router wires into handlers.
type Dependencies struct {
	Hub        *websocket.Hub
	Tokens     *auth.Tokens
	Sessions   auth.SessionLoader
	Auth       services.AuthServiceProvider
	Events     services.EventServiceProvider
	Assessment services.AssessmentServiceProvider
	Roadmaps   services.RoadmapServiceProvider
	Progress   services.ProgressServiceProvider
	Insights   services.InsightServiceProvider
	Portfolio  services.PortfolioServiceProvider
	Mentor     services.MentorServiceProvider
	Concierge  services.MentorServiceProvider

	Stats     handlers.StatsSource
	Gatherer  prometheus.Gatherer
	Synthesis string // provider name reported by /healthz

	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Auth, deps.SecureCookies)
	eventHandler := handlers.NewEventHandler(deps.Events)
	assessmentHandler := handlers.NewAssessmentHandler(deps.Assessment, deps.Roadmaps)
	roadmapHandler := handlers.NewRoadmapHandler(deps.Roadmaps, deps.Progress)
	insightHandler := handlers.NewInsightHandler(deps.Insights, deps.Portfolio)
	mentorHandler := handlers.NewMentorHandler(deps.Mentor, "mentor")
	conciergeHandler := handlers.NewMentorHandler(deps.Concierge, "concierge")
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	healthHandler := handlers.NewHealthHandler(deps.Stats, deps.Synthesis)

	r.Get("/healthz", healthHandler.Get)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", userHandler.Register)
		r.Post("/auth/login", userHandler.Login)
		r.Get("/assessment/sectors", assessmentHandler.Sectors)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Tokens, deps.Sessions))

			r.Get("/ws", wsHandler.Serve)

			r.Post("/auth/logout", userHandler.Logout)
			r.Get("/auth/me", userHandler.GetMe)
			r.Put("/account", userHandler.Update)
			r.Get("/events", eventHandler.GetRecent)

			r.Route("/assessment", func(r chi.Router) {
				r.Get("/draft", assessmentHandler.GetDraft)
				r.Delete("/draft", assessmentHandler.Discard)
				r.Put("/draft/{step}", assessmentHandler.ApplyStep)
				r.Post("/submit", assessmentHandler.Submit)
			})

			r.Route("/roadmap", func(r chi.Router) {
				r.Get("/", roadmapHandler.Get)
				r.Post("/regenerate", roadmapHandler.Regenerate)
				r.Post("/progress", roadmapHandler.ToggleTask)
			})

			r.Route("/portfolio", func(r chi.Router) {
				r.Post("/strategy", insightHandler.PortfolioStrategy)
				r.Post("/rewrite", insightHandler.Rewrite)
			})

			r.Route("/insights", func(r chi.Router) {
				r.Get("/skills", insightHandler.Skills)
				r.Get("/quiz", insightHandler.Quiz)
				r.Get("/opportunities", insightHandler.Opportunities)
			})

			r.Route("/mentor", func(r chi.Router) {
				r.Get("/messages", mentorHandler.History)
				r.Post("/messages", mentorHandler.Send)
				r.Delete("/messages", mentorHandler.Clear)
			})

			r.Route("/concierge", func(r chi.Router) {
				r.Get("/messages", conciergeHandler.History)
				r.Post("/messages", conciergeHandler.Send)
				r.Delete("/messages", conciergeHandler.Clear)
			})
		})
	})

	return r
}
