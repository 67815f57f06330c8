package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/gamesforgood/catalog/internal/config"
)

// NewServer assembles the router and HTTP server. The read surface is
// public; everything that writes sits behind the admin bearer token.
func NewServer(cfg config.Server, adminToken string, h *Handlers, logger zerolog.Logger) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", h.ListGames)
		r.Get("/games/{id}", h.GetGame)
		r.Get("/themes", h.ListThemes)
		r.Get("/tags", h.ListTags)

		r.Group(func(r chi.Router) {
			r.Use(adminAuth(adminToken))

			r.Post("/games", h.CreateGame)
			r.Put("/games/{id}", h.UpdateGame)
			r.Delete("/games/{id}", h.DeleteGame)
			r.Put("/games/{id}/tags", h.ReplaceGameTags)

			r.Post("/themes", h.CreateTheme)
			r.Delete("/themes/{id}", h.DeleteTheme)
			r.Post("/tags", h.CreateTag)
			r.Delete("/tags/{id}", h.DeleteTag)

			r.Get("/admin/games/names", h.GameNames)
			r.Get("/admin/games/export", h.ExportGames)
			r.Post("/admin/games/import", h.ImportGames)
			r.Post("/admin/popularity/recompute", h.RecomputePopularity)
		})
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
