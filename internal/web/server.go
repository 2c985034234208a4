// Package web serves the catalog JSON API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/motorcat/internal/catalog"
	"github.com/JonMunkholm/motorcat/internal/config"
	"github.com/JonMunkholm/motorcat/internal/importer"
	"github.com/JonMunkholm/motorcat/internal/settings"
	mw "github.com/JonMunkholm/motorcat/internal/web/middleware"
)

// Server is the HTTP server for the catalog API.
type Server struct {
	cfg      *config.Config
	store    catalog.Store
	imports  *importer.Service
	settings settings.Store
	builder  catalog.Builder

	router   *chi.Mux
	server   *http.Server
	limiters []*ipLimiter
}

// NewServer wires routes and middleware around the given dependencies.
func NewServer(cfg *config.Config, store catalog.Store, imports *importer.Service, st settings.Store) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		imports:  imports,
		settings: st,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5, "application/json"))
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).middleware)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public browse endpoints.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Get("/categories", s.handleCategories)
			r.Get("/catalog", s.handleCatalog)
			r.Get("/catalog/{slug}", s.handleCatalog)
			r.Get("/catalog/{slug}/facets", s.handleFacets)
			r.Get("/items/{id}", s.handleItem)
		})

		// Staff endpoints.
		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))

			// Imports carry their own timeout in the importer service.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(s.newLimiter(s.cfg.Rate.ImportPerMinute).middleware)
				}
				r.Post("/import", s.handleImport)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

				r.Get("/imports", s.handleListImports)
				r.Get("/imports/{id}", s.handleGetImport)

				r.Delete("/items/{id}", s.handleDeleteItem)
				r.Post("/items/delete", s.handleDeleteItems)
				r.Delete("/items", s.handlePurge)

				r.Get("/settings", s.handleGetSettings)
				r.Put("/settings", s.handlePutSettings)
			})
		})
	})
}

func (s *Server) newLimiter(perMinute int) *ipLimiter {
	l := newIPLimiter(perMinute, 10*time.Minute)
	s.limiters = append(s.limiters, l)
	return l
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and its background limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, l := range s.limiters {
		l.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.imports != nil {
		resp["imports"] = s.imports.Limiter().Status()
	}
	writeJSON(w, http.StatusOK, resp)
}
