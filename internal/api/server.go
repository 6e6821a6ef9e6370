// Package api assembles the chi router and middleware stack for the
// gameplay analysis service.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/avelar/gamelens/internal/api/handler"
	"github.com/avelar/gamelens/internal/config"
)

// NewRouter creates the chi router with all middleware and routes.
func NewRouter(h *handler.Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(LoggingMiddleware)

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/video", func(r chi.Router) {
			r.Post("/upload-url", h.CreateUploadURL)
			r.Post("/analyze/{videoID}", h.AnalyzeVideo)
			r.Get("/{videoID}/status", h.VideoStatus)
		})

		// Compatibility path for the old frontend.
		r.Post("/analyze-video/{videoID}", h.AnalyzeVideo)

		r.Route("/agent/conversation", func(r chi.Router) {
			r.Post("/start", h.StartConversation)
			r.Post("/message", h.SendMessage)
			r.Post("/end", h.EndConversation)
		})

		r.Post("/query/ask", h.AskQuestion)
	})

	return r
}
