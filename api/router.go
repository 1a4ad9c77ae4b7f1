package api

import (
	"net/http"

	"github.com/Goofygiraffe06/signup/internal/models"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries what the HTTP surface needs.
type RouterConfig struct {
	Provider       provider.Provider
	Verifier       Verifier // nil when the provider sends its own links
	LoginURL       string
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter wires the registration endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	if cfg.MaxBodyBytes > 0 {
		router.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, models.StatusResponse{Status: "ok"})
	})

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/register", http.StatusFound)
	})
	router.Get("/register", RegisterPageHandler(cfg.LoginURL))
	router.Post("/register", RegisterFormHandler(cfg.Provider, cfg.LoginURL))

	if cfg.Verifier != nil {
		router.Get("/verify", VerifyHandler(cfg.Verifier, cfg.LoginURL))
	}

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
		r.Post("/register", RegisterJSONHandler(cfg.Provider))
	})

	return router
}
