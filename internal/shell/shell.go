// Package shell ties the manifest store, content renderer, and sidebar
// together. A Shell is the context object a client session navigates
// through; it holds no navigation state of its own.
package shell

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/dgallion1/docshell/internal/content"
	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/parser"
	"github.com/dgallion1/docshell/internal/route"
	"github.com/dgallion1/docshell/internal/sidebar"
)

type Shell struct {
	store    *manifest.Store
	loader   *manifest.Loader
	renderer *content.Renderer
	src      fetch.Source
	parse    parser.Options
	log      *slog.Logger
}

type Options struct {
	NoContentMessage string
	Parser           parser.Options
}

func New(store *manifest.Store, loader *manifest.Loader, src fetch.Source, opts Options, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Shell{
		store:  store,
		loader: loader,
		renderer: content.NewRenderer(src, content.Options{
			NoContentMessage: opts.NoContentMessage,
			Parser:           opts.Parser,
		}, log),
		src:   src,
		parse: opts.Parser,
		log:   log,
	}
}

// Boot is everything a client needs for its first paint.
type Boot struct {
	Panel       map[string]string `json:"panel"`
	Sidebar     sidebar.Nav       `json:"sidebar"`
	SidebarHTML string            `json:"sidebar_html"`
	View        content.View      `json:"view"`
}

// Boot runs the startup sequence in order: a closed panel, the manifests,
// the sidebar, then the initial content. Manifests are loaded here only if
// nothing has published them yet; after that, reloads come from the
// watcher or an explicit Reload.
func (s *Shell) Boot(ctx context.Context, fragment string) Boot {
	var panel sidebar.Panel

	set := s.store.Get()
	if !s.store.Loaded() {
		set = s.Reload(ctx)
	}

	nav := sidebar.Build(set.Sections, fragment)
	navHTML, err := nav.HTML()
	if err != nil {
		s.log.Error("sidebar render failed", "error", err)
	}

	return Boot{
		Panel:       panel.Attrs(),
		Sidebar:     nav,
		SidebarHTML: string(navHTML),
		View:        s.renderer.Render(ctx, set, fragment),
	}
}

// Reload fetches the manifests again and publishes them. Validation issues
// are logged and otherwise ignored.
func (s *Shell) Reload(ctx context.Context) *manifest.Set {
	set := s.store.Reload(ctx, s.loader)
	for _, issue := range route.Validate(set) {
		s.log.Warn("manifest mismatch", "kind", issue.Kind, "href", issue.Href, "detail", issue.Message)
	}
	return set
}

// Navigate renders one navigation event against the current manifests.
// Concurrent calls are independent; nothing is cancelled or merged.
func (s *Shell) Navigate(ctx context.Context, fragment string) content.View {
	return s.renderer.Render(ctx, s.store.Get(), fragment)
}

// Click follows a sidebar link: adopt its fragment and navigate. The
// browser closes its own panel; see sidebar.PanelNavigate.
func (s *Shell) Click(ctx context.Context, href string) content.View {
	return s.Navigate(ctx, route.FragmentOf(href))
}

// Sidebar builds the navigation for fragment.
func (s *Shell) Sidebar(fragment string) sidebar.Nav {
	return sidebar.Build(s.store.Get().Sections, fragment)
}

// Manifests returns the current manifest Set.
func (s *Shell) Manifests() *manifest.Set {
	return s.store.Get()
}

// Validate cross-checks the manifests, then fetches each page a section
// points at and checks that the section heading exists in it.
func (s *Shell) Validate(ctx context.Context) []route.Issue {
	set := s.store.Get()
	issues := route.Validate(set)
	return append(issues, s.checkPages(ctx, set)...)
}

func (s *Shell) checkPages(ctx context.Context, set *manifest.Set) []route.Issue {
	var issues []route.Issue
	ids := make(map[string]map[string]bool)
	for _, mod := range set.Sections {
		for _, sec := range mod.Children {
			f := route.Parse(route.FragmentOf(sec.Href))
			if f.SectionSlug == "" {
				continue
			}
			href, ok := route.Resolve(set.Pages, f)
			if !ok {
				continue
			}
			page, seen := ids[href]
			if !seen {
				var err error
				page, err = s.headingIDs(ctx, href)
				if err != nil {
					issues = append(issues, route.Issue{
						Kind:    route.IssueUnreachablePage,
						Href:    href,
						Message: err.Error(),
					})
				}
				ids[href] = page
			}
			if page != nil && !page[f.SectionID()] {
				issues = append(issues, route.Issue{
					Kind:    route.IssueMissingHeading,
					Href:    sec.Href,
					Message: "page " + href + " has no heading with id " + f.SectionID(),
				})
			}
		}
	}
	return issues
}

func (s *Shell) headingIDs(ctx context.Context, href string) (map[string]bool, error) {
	body, err := fetch.ReadOK(ctx, s.src, href)
	if err != nil {
		return nil, err
	}
	markup, err := parser.ForFile(href, s.parse).Convert(body, href)
	if err != nil {
		return nil, err
	}
	tree, err := (&parser.HTMLParser{}).Parse(strings.NewReader(markup), href)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, id := range tree.IDs() {
		ids[id] = true
	}
	return ids, nil
}
