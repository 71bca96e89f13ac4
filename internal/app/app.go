// Package app wires configuration into a running docshell service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/docshell/internal/api"
	"github.com/dgallion1/docshell/internal/config"
	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/dgallion1/docshell/internal/livereload"
	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/parser"
	"github.com/dgallion1/docshell/internal/shell"
)

// App holds the long-lived collaborators built from a Config.
type App struct {
	Config config.Config
	Shell  *shell.Shell
	Hub    *livereload.Hub
	Stats  *fetch.Stats

	src    fetch.Source
	loader *manifest.Loader
	dir    *fetch.Dir
	client *fetch.Client
	log    *slog.Logger
}

// New builds the fetch source, manifest store, and shell for cfg. It does
// not load the manifests; call Shell.Reload or Run for that.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	base, err := fetch.New(cfg.ContentRoot, cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}
	stats := fetch.NewStats(cfg.StatsWindow)
	src := fetch.WithStats(base, stats)

	a := &App{
		Config: cfg,
		Stats:  stats,
		Hub:    livereload.NewHub(log),
		src:    src,
		log:    log,
	}
	switch b := base.(type) {
	case *fetch.Dir:
		a.dir = b
	case *fetch.Client:
		a.client = b
	}

	if cfg.LiveReload && cfg.RemoteContent() {
		log.Info("live reload needs a local content root, disabled", "content_root", cfg.ContentRoot)
	}

	a.loader = manifest.NewLoader(src, cfg.SectionCandidates, cfg.PageCandidates, log)
	a.Shell = shell.New(manifest.NewStore(), a.loader, src, shell.Options{
		NoContentMessage: cfg.NoContentMessage,
		Parser:           parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, log)
	return a, nil
}

// Handler returns the HTTP API for the app.
func (a *App) Handler() http.Handler {
	var content fs.FS
	if a.dir != nil {
		content = a.dir.FS()
	}
	return api.NewServer(api.Deps{
		Shell:   a.Shell,
		Hub:     a.Hub,
		Stats:   a.Stats,
		Content: content,
	}, a.log, a.Config)
}

// Run loads the manifests, starts the live reload watcher when the content
// root is local, and serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.Shell.Reload(ctx)

	if a.Config.LiveReload && !a.Config.RemoteContent() && a.dir != nil {
		w, err := livereload.NewWatcher(a.dir.Root(), livereload.WatchOptions{
			Ignore:    a.Config.WatchIgnore,
			Debounce:  a.Config.WatchDebounce,
			Manifests: a.loader.Candidates(),
		}, a.log)
		if err != nil {
			a.log.Warn("live reload disabled", "error", err)
		} else {
			onChange := livereload.Notify(a.Hub, func(ctx context.Context) { a.Shell.Reload(ctx) })
			go func() {
				if err := w.Run(ctx, onChange); err != nil {
					a.log.Error("watcher stopped", "error", err)
				}
			}()
			a.log.Info("live reload enabled", "root", a.dir.Root())
		}
	}

	httpServer := &http.Server{
		Addr:         ":" + a.Config.Port,
		Handler:      a.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. Shutdown does not wait for hijacked websocket
	// connections, so the hub is closed after it to release any that
	// joined while the listener was closing.
	go func() {
		<-ctx.Done()
		a.log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("http shutdown", "error", err)
		}
		a.Hub.Close()

		if a.client != nil {
			a.client.Close()
		}
	}()

	a.log.Info("starting docshell", "port", a.Config.Port, "content_root", a.Config.ContentRoot)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
