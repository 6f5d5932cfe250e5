package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if g.metrics != nil {
		r.Use(g.metrics.middleware)
	}
	if len(g.config.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   g.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Signature-256"},
			AllowCredentials: g.config.CORS.AllowCredentials,
			MaxAge:           g.config.CORS.MaxAge,
		}))
	}
	if g.limiter != nil {
		r.Use(rateLimitMiddleware(g.limiter))
	}

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	// Webhooks carry their own HMAC auth per source.
	if len(g.config.Webhooks) > 0 {
		r.Post("/webhooks/{source}", g.handleWebhook())
	}

	r.Group(func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth, g.logger))
		}
		r.Get("/status", g.handleStatus())
		r.Get("/ws/conversations/{id}", g.handleStream())
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Get("/modules", g.handleModules())
			if g.reloader != nil {
				r.Post("/config/reload", g.handleReload())
			}

			r.Get("/conversations", g.handleListConversations())
			r.Post("/conversations", g.handleCreateConversation())
			r.Route("/conversations/{id}", func(r chi.Router) {
				r.Delete("/", g.handleDeleteConversation())
				r.Get("/messages", g.handleListMessages())
				r.Post("/messages", g.handleAppendMessage())
				r.Put("/messages", g.handleReplaceMessages())
				r.Delete("/messages", g.handleClearMessages())
				r.Delete("/messages/{position}", g.handleRemoveMessage())
				r.Post("/messages/{position}/swipe", g.handleSwipe())
				r.Post("/messages/{position}/settle", g.handleSettle())
			})
		})
	})

	return r
}
