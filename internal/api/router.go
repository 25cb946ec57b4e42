package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/moredevelopers26/chattest/internal/api/middleware"
	"github.com/moredevelopers26/chattest/internal/chat"
	"github.com/moredevelopers26/chattest/internal/handlers"
)

// maxBody allows media messages, which travel as base64 data URIs.
const maxBody = 8 << 20

// RouterConfig holds the router's dependencies.
type RouterConfig struct {
	Logger    zerolog.Logger
	Chat      *chat.Service
	Handler   *handlers.Handler
	RateLimit middleware.RateLimiterConfig
}

// Router is the HTTP entry point. Stop releases the rate limiter.
type Router struct {
	*chi.Mux
	limiter *middleware.RateLimiter
}

// Stop ends background work owned by the router.
func (rt *Router) Stop() {
	rt.limiter.Stop()
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	h := cfg.Handler

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(maxBody))
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoadSession(cfg.Chat))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)

	// Rate limiting
	limiter := middleware.NewRateLimiter(cfg.Logger, cfg.RateLimit)
	r.Use(limiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/logout", h.Logout)

	r.Get("/users", h.ListUsers)
	r.Get("/users/{id}", h.GetUser)
	r.Put("/users/{id}/status", h.UpdateStatus)
	r.Patch("/users/{id}", h.UpdateProfile)

	r.Get("/chats", h.ListChats)
	r.Get("/rooms/{id}", h.GetRoom)
	r.Get("/rooms/{id}/messages", h.GetRoomMessages)
	r.Put("/rooms/{id}/messages/{mid}", h.EditMessage)
	r.Delete("/rooms/{id}/messages/{mid}", h.DeleteMessage)
	r.Delete("/rooms/{id}", h.DeleteConversation)
	r.Post("/rooms/{id}/read", h.MarkRead)
	r.Get("/rooms/{id}/unread", h.Unread)
	r.Get("/rooms/{id}/typing", h.GetTyping)
	r.Delete("/messages", h.ClearMessages)

	r.Get("/vault", h.GetVault)
	r.Post("/vault", h.SaveToVault)
	r.Delete("/vault/{id}", h.RemoveFromVault)
	r.Delete("/vault", h.ClearVault)

	r.Get("/calls", h.ListCalls)
	r.Post("/calls", h.RecordCall)

	r.Get("/ws", h.Stream)

	// Session routes (require a logged-in user)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession)

		r.Get("/me", h.Me)
		r.Post("/rooms/{id}/messages", h.PostMessage)
		r.Post("/rooms/{id}/messages/{mid}/forward", h.ForwardMessage)
		r.Post("/rooms/{id}/typing", h.SetTyping)
		r.Get("/private/{userId}", h.PrivateRoom)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.Error(w, http.StatusNotFound, "not found")
	})

	return &Router{Mux: r, limiter: limiter}
}
