package content

import (
	"context"
	"html"
	"io"
	"log/slog"

	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/parser"
	"github.com/dgallion1/docshell/internal/route"
	"github.com/dgallion1/docshell/internal/sidebar"
)

// Status says which kind of view was produced.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusFetchFailed Status = "fetch_failed"
)

// DefaultNoContentMessage is shown when a fragment resolves to no page.
const DefaultNoContentMessage = "No content"

// Scroll tells the client where to go once the content is in place. The
// client waits one animation frame before applying it.
type Scroll struct {
	Target   string `json:"target,omitempty"`
	Top      bool   `json:"top,omitempty"`
	Behavior string `json:"behavior"`
}

// View replaces the whole content area.
type View struct {
	Status   Status   `json:"status"`
	Fragment string   `json:"fragment"`
	Href     string   `json:"href,omitempty"`
	HTML     string   `json:"html"`
	Scroll   Scroll   `json:"scroll"`
	Active   []string `json:"active"`
	Numbered int      `json:"numbered"`
}

type Options struct {
	NoContentMessage string
	Parser           parser.Options
}

// Renderer produces content views from a Source.
type Renderer struct {
	src       fetch.Source
	opts      Options
	noContent string
	log       *slog.Logger
}

func NewRenderer(src fetch.Source, opts Options, log *slog.Logger) *Renderer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	msg := opts.NoContentMessage
	if msg == "" {
		msg = DefaultNoContentMessage
	}
	return &Renderer{
		src:       src,
		opts:      opts,
		noContent: NoContentHTML(msg),
		log:       log,
	}
}

// NoContentHTML is the markup of the "nothing to show" view.
func NoContentHTML(msg string) string {
	return `<p class="empty">` + html.EscapeString(msg) + `</p>`
}

// LoadErrorHTML is the markup shown when href could not be loaded.
func LoadErrorHTML(href string) string {
	return `<p class="load-error">Unable to load ` + html.EscapeString(href) + `</p>`
}

// Render resolves raw against the manifests and builds the view. It never
// fails: unresolvable fragments and unreachable pages produce degraded
// views instead.
func (r *Renderer) Render(ctx context.Context, set *manifest.Set, raw string) View {
	f := route.Parse(raw)
	view := View{
		Fragment: f.String(),
		Scroll:   scrollFor(f),
		Active:   sidebar.ActiveHrefs(set.Sections, raw),
	}

	href, ok := route.Resolve(set.Pages, f)
	if !ok {
		view.Status = StatusEmpty
		view.HTML = r.noContent
		return view
	}
	view.Href = href

	resp, err := r.src.Fetch(ctx, href)
	switch {
	case err != nil:
		r.log.Warn("page fetch failed", "href", href, "error", err)
		return r.failed(view)
	case !resp.OK():
		r.log.Warn("page fetch failed", "href", href, "status", resp.Status)
		return r.failed(view)
	}

	markup, err := parser.ForFile(href, r.opts.Parser).Convert(resp.Body, href)
	if err != nil {
		r.log.Warn("page conversion failed", "href", href, "error", err)
		return r.failed(view)
	}

	view.Status = StatusOK
	view.HTML, view.Numbered = r.prepare(markup, f, set.Sections)
	return view
}

func (r *Renderer) failed(view View) View {
	view.Status = StatusFetchFailed
	view.HTML = LoadErrorHTML(view.Href)
	return view
}

// prepare sanitizes and numbers the page in one parse.
func (r *Renderer) prepare(markup string, f route.Fragment, tree manifest.SectionTree) (string, int) {
	root, err := parseWrapped(markup)
	if err != nil {
		return markup, 0
	}
	strip(root)
	n, err := NumberSections(root, f, tree)
	if err != nil {
		r.log.Debug("section numbering skipped", "fragment", f.String(), "error", err)
		n = 0
	}
	out, err := innerHTML(root)
	if err != nil {
		return markup, 0
	}
	return out, n
}

func scrollFor(f route.Fragment) Scroll {
	if id := f.SectionID(); id != "" {
		return Scroll{Target: id, Behavior: "smooth"}
	}
	return Scroll{Top: true, Behavior: "instant"}
}
