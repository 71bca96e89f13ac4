package manifest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/dgallion1/docshell/internal/fetch"
)

// Loader fetches the manifest pair from a Source, first match wins.
type Loader struct {
	src               fetch.Source
	sectionCandidates []string
	pageCandidates    []string
	log               *slog.Logger
}

func NewLoader(src fetch.Source, sectionCandidates, pageCandidates []string, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		src:               src,
		sectionCandidates: sectionCandidates,
		pageCandidates:    pageCandidates,
		log:               log,
	}
}

// Candidates returns every manifest candidate, sections first.
func (l *Loader) Candidates() []string {
	out := make([]string, 0, len(l.sectionCandidates)+len(l.pageCandidates))
	out = append(out, l.sectionCandidates...)
	return append(out, l.pageCandidates...)
}

// FetchJSON tries each candidate in order and decodes the first one that
// answers with a success status and valid JSON. It returns the candidate
// used, or false when every candidate failed.
func FetchJSON[T any](ctx context.Context, src fetch.Source, candidates []string, log *slog.Logger) (T, string, bool) {
	var zero T
	for _, ref := range candidates {
		resp, err := src.Fetch(ctx, ref)
		if err != nil {
			log.Debug("manifest candidate failed", "ref", ref, "error", err)
			continue
		}
		if !resp.OK() {
			log.Debug("manifest candidate failed", "ref", ref, "status", resp.Status)
			continue
		}
		var v T
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			log.Debug("manifest candidate is not valid json", "ref", ref, "error", err)
			continue
		}
		return v, ref, true
	}
	return zero, "", false
}

// Load fetches both manifests sequentially, section tree first. A manifest
// that cannot be fetched is replaced by its empty default.
func (l *Loader) Load(ctx context.Context) *Set {
	set := Empty()

	sections, from, ok := FetchJSON[SectionTree](ctx, l.src, l.sectionCandidates, l.log)
	if ok {
		if sections != nil {
			set.Sections = sections
		}
		set.SectionsFrom = from
	} else {
		l.log.Warn("section tree unavailable, using empty default", "candidates", l.sectionCandidates)
	}

	pages, from, ok := FetchJSON[PageManifest](ctx, l.src, l.pageCandidates, l.log)
	if ok {
		if pages.Modules != nil {
			set.Pages = pages
		}
		set.PagesFrom = from
	} else {
		l.log.Warn("page manifest unavailable, using empty default", "candidates", l.pageCandidates)
	}

	l.log.Info("manifests loaded",
		"modules", len(set.Sections),
		"page_modules", len(set.Pages.Modules),
		"sections_from", set.SectionsFrom,
		"pages_from", set.PagesFrom,
	)
	return set
}
