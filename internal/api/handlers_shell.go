package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/docshell/internal/route"
	"github.com/dgallion1/docshell/internal/sidebar"
)

// handleBoot runs the startup sequence: manifests, sidebar, first view.
func (s *Server) handleBoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.shell.Boot(r.Context(), r.URL.Query().Get("fragment")))
}

// handleView renders one navigation. An href parameter is treated as a
// sidebar click and takes precedence over fragment.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if href := q.Get("href"); href != "" {
		writeJSON(w, s.shell.Click(r.Context(), href))
		return
	}
	writeJSON(w, s.shell.Navigate(r.Context(), q.Get("fragment")))
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	nav := s.shell.Sidebar(r.URL.Query().Get("fragment"))
	markup, err := nav.HTML()
	if err != nil {
		jsonError(w, "failed to render sidebar: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"items":  nav.Items,
		"html":   string(markup),
		"active": nav.Active(),
	})
}

// handlePanel applies one panel event to the state the browser sends and
// returns the resulting attributes. The server keeps no panel state.
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var p sidebar.Panel
	if v := q.Get("open"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "open must be true or false", http.StatusBadRequest)
			return
		}
		p.Open = open
	}
	if err := p.Handle(q.Get("event")); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"open":  p.Open,
		"attrs": p.Attrs(),
	})
}

func (s *Server) handleManifests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.shell.Manifests())
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	issues := s.shell.Validate(r.Context())
	if issues == nil {
		issues = []route.Issue{}
	}
	writeJSON(w, map[string]any{"issues": issues})
}

// handleReload refetches the manifests and returns what was loaded.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	set := s.shell.Reload(r.Context())
	s.log.Info("manifests reloaded on request",
		"modules", len(set.Sections),
		"page_modules", len(set.Pages.Modules),
	)
	writeJSON(w, set)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
