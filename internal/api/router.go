package api

import (
	"net/http"
	"time"

	"codeprep/internal/api/handler"
	"codeprep/internal/api/middleware"
	"codeprep/internal/app/service"
	"codeprep/internal/common/security"
	"codeprep/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Deps struct {
	Config           *config.Config
	TokenAuth        *jwtauth.JWTAuth
	WebhookVerifier  *security.WebhookVerifier
	Guard            *middleware.AuthGuard
	RateLimitStore   middleware.CounterStore // nil disables rate limiting
	AuthService      *service.AuthService
	ProblemService   *service.ProblemService
	UserService      *service.UserService
	AnalyticsService *service.AnalyticsService
	WebhookService   *service.WebhookService
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover(deps.Config.Production()))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Accept-Version"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler)

	if deps.RateLimitStore != nil {
		r.Use(middleware.RateLimit(deps.RateLimitStore, deps.Config.RateLimitMax, deps.Config.RateLimitWindow))
	}

	// Verifies a bearer token when present and leaves claims in the
	// context; the guard decides per route whether one is required.
	r.Use(jwtauth.Verifier(deps.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "message": "Server is up and running!"}`))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(deps.AuthService, deps.Guard)
		v1.Route("/auth", authHandler.RegisterRoutes)

		problemHandler := handler.NewProblemHandler(deps.ProblemService, deps.Guard)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(deps.UserService, deps.Guard)
		v1.Route("/users", userHandler.RegisterRoutes)

		analyticsHandler := handler.NewAnalyticsHandler(deps.AnalyticsService, deps.Guard)
		v1.Route("/analytics", analyticsHandler.RegisterRoutes)

		webhookHandler := handler.NewWebhookHandler(deps.WebhookService, deps.WebhookVerifier)
		v1.Route("/webhook", webhookHandler.RegisterRoutes)
	})

	return r
}
