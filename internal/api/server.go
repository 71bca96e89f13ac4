package api

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docshell/internal/config"
	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/dgallion1/docshell/internal/livereload"
	"github.com/dgallion1/docshell/internal/shell"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

//go:embed assets
var assets embed.FS

// Server is the HTTP API server for docshell.
type Server struct {
	router  chi.Router
	shell   *shell.Shell
	hub     *livereload.Hub
	stats   *fetch.Stats
	content fs.FS
	log     *slog.Logger
	cfg     config.Config
}

// Deps are the collaborators a Server serves. Hub, Stats and Content are
// optional; their routes are not mounted when nil.
type Deps struct {
	Shell   *shell.Shell
	Hub     *livereload.Hub
	Stats   *fetch.Stats
	Content fs.FS
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		shell:   deps.Shell,
		hub:     deps.Hub,
		stats:   deps.Stats,
		content: deps.Content,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleAsset("shell.html", "text/html; charset=utf-8"))
	r.Get("/shell.js", s.handleAsset("shell.js", "text/javascript; charset=utf-8"))

	r.Get("/api/boot", s.handleBoot)
	r.Get("/api/view", s.handleView)
	r.Get("/api/sidebar", s.handleSidebar)
	r.Get("/api/panel", s.handlePanel)
	r.Get("/api/manifests", s.handleManifests)
	r.Get("/api/validate", s.handleValidate)

	if s.hub != nil {
		r.Get("/live", s.hub.ServeHTTP)
	}
	if s.content != nil {
		files := NoStore(http.StripPrefix("/content", http.FileServer(http.FS(s.content))))
		r.Handle("/content/*", files)
		// Pages reference their images and other assets relative to the
		// shell page, so unmatched paths fall through to the content root.
		r.NotFound(NoStore(http.FileServer(http.FS(s.content))).ServeHTTP)
	}

	// Authenticated endpoints, only when an API key is configured.
	if s.cfg.APIKey != "" {
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

			r.Post("/api/reload", s.handleReload)
			r.Get("/api/stats/fetch", s.handleFetchStats)
		})
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleAsset(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := fs.ReadFile(assets, "assets/"+name)
		if err != nil {
			jsonError(w, "asset unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		w.Write(data)
	}
}
