// Package router wires every API route onto a chi router and applies the
// shared middleware chain.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/ratelimit"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/auth/store"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/contact"
	contenthandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/content/handler"
	gwmw "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/gateway/middleware"
	searchhandler "github.com/Adithya-Monish-Kumar-K/learning-hub/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
)

// Deps carries the handlers and shared services the router mounts.
// Metrics is optional.
type Deps struct {
	Content  *contenthandler.Handler
	Search   *searchhandler.Handler
	Auth     *authhandler.Handler
	Contact  *contact.Handler
	Sessions *store.Store
	Limiter  *ratelimit.Limiter
	Health   *health.Checker
	Metrics  *metrics.Metrics

	CORS            config.CORSConfig
	RequestTimeout  time.Duration
	RateLimitWindow time.Duration
}

// New builds the HTTP handler.
//
// Middleware chain (outermost first):
//
//	Recoverer → RealIP → CORS → RequestID → AccessLog → Metrics → Timeout → route
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", pkgmw.RequestIDHeader},
		ExposedHeaders:   []string{pkgmw.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           d.CORS.MaxAge,
	}))
	r.Use(pkgmw.RequestID)
	r.Use(pkgmw.AccessLog)
	if d.Metrics != nil {
		r.Use(pkgmw.Metrics(d.Metrics))
	}
	if d.RequestTimeout > 0 {
		r.Use(pkgmw.Timeout(d.RequestTimeout))
	}

	r.Get("/health/live", d.Health.LiveHandler())
	r.Get("/health/ready", d.Health.ReadyHandler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/topics", d.Content.ListTopics)
		r.Get("/topics/{slug}", d.Content.GetTopic)
		r.Get("/articles", d.Content.ListArticles)
		r.Get("/articles/latest", d.Content.Latest)
		r.Get("/articles/{slug}", d.Content.GetArticle)
		r.Get("/stats", d.Content.Stats)

		r.Get("/search", d.Search.Search)
		r.Get("/search/cache/stats", d.Search.CacheStats)
		r.Post("/search/cache/invalidate", d.Search.CacheInvalidate)

		r.Route("/auth", func(r chi.Router) {
			limited := r.With(gwmw.RateLimit(d.Limiter, d.RateLimitWindow))
			limited.Post("/register", d.Auth.Register)
			limited.Post("/login", d.Auth.Login)

			r.Get("/users", d.Auth.Users)

			authed := r.With(gwmw.RequireSession(d.Sessions))
			authed.Post("/logout", d.Auth.Logout)
			authed.Get("/me", d.Auth.Me)
			authed.Patch("/me", d.Auth.UpdateMe)
			authed.Delete("/me", d.Auth.DeleteMe)
		})

		r.Post("/contact", d.Contact.Submit)
		r.Get("/contact", d.Contact.List)
	})

	return r
}
