package api

import (
	"net/http"

	"github.com/avely-labs/formation-advisor/internal/advisor"
	"github.com/avely-labs/formation-advisor/internal/api/handler"
	customMiddleware "github.com/avely-labs/formation-advisor/internal/api/middleware"
	"github.com/avely-labs/formation-advisor/internal/config"
	"github.com/avely-labs/formation-advisor/internal/llm"
	"github.com/avely-labs/formation-advisor/internal/llm/gemini"
	"github.com/avely-labs/formation-advisor/internal/llm/ollama"
	"github.com/avely-labs/formation-advisor/internal/llm/openai"
	"github.com/avely-labs/formation-advisor/internal/repository/redis"
	"github.com/avely-labs/formation-advisor/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, sessions *session.Store, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	r.Use(customMiddleware.SecurityHeaders)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize LLM router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)

	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	if cfg.LLM.Gemini.APIKey != "" {
		llmRouter.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Ollama.Host != "" {
		log.Info().Str("host", cfg.LLM.Ollama.Host).Msg("Registering Ollama provider")
		llmRouter.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}

	provider, err := llmRouter.GetProvider("")
	if err != nil {
		log.Fatal().Err(err).Msg("No configured LLM provider for advisory capabilities")
	}

	// Advisory core
	analyst := advisor.NewLLMAnalyst(provider, cfg.LLM.Model)
	synthesizer := advisor.NewLLMSynthesizer(provider, cfg.LLM.Model)
	orchestrator := advisor.NewOrchestrator(analyst, cfg.Advisory.Deadline)
	advisoryService := advisor.NewAdvisoryService(
		orchestrator,
		synthesizer,
		sessions,
		cfg.Advisory.MaxClarificationRounds,
	)

	// Rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	// Handlers
	consultHandler := handler.NewConsultHandler(advisoryService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck(advisoryService))

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware.Limit)
			r.Post("/consult", consultHandler.Consult)
		})
	})

	return r
}
