package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/postwall/backend/internal/middleware"
	"github.com/itchan-dev/postwall/backend/internal/setup"
	mw "github.com/itchan-dev/postwall/shared/middleware"
	"github.com/itchan-dev/postwall/shared/middleware/metrics"
)

// New creates the chi router with all routes and middleware.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// JSON API and media only, nothing needs scripts or styles
	backendCSP := "default-src 'none'; img-src 'self'; media-src 'self'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.EnableHSTS, backendCSP))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/posts", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(middleware.LimitByIP(deps.RateLimiter))
		}

		r.Post("/create", h.CreatePost)
		r.Get("/all", h.GetAllPosts)
		r.Get("/user/{userId}", h.GetPostsByUser)
		r.Get("/media/{filename}", h.GetMedia)
		r.Get("/{userId}/{postId}", h.GetPost)
		r.Put("/{userId}/{postId}", h.UpdatePost)
		r.Delete("/{userId}/{postId}", h.DeletePost)
	})

	return r
}
