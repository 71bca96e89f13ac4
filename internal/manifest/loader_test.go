package manifest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dgallion1/docshell/internal/fetch"
)

// fakeSource answers from a map; refs in fail return a transport error.
type fakeSource struct {
	files map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeSource) Fetch(ctx context.Context, ref string) (*fetch.Response, error) {
	f.calls = append(f.calls, ref)
	if f.fail[ref] {
		return nil, errors.New("connection refused")
	}
	body, ok := f.files[ref]
	if !ok {
		return &fetch.Response{Ref: ref, Status: 404}, nil
	}
	return &fetch.Response{Ref: ref, Status: 200, Body: []byte(body)}, nil
}

var (
	sectionCandidates = []string{"assets/sections.json", "sections.json"}
	pageCandidates    = []string{"assets/modules.json", "modules.json"}
)

func newTestLoader(src fetch.Source) *Loader {
	return NewLoader(src, sectionCandidates, pageCandidates, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoad_PrimaryCandidates(t *testing.T) {
	src := &fakeSource{files: map[string]string{
		"assets/sections.json": `[{"title":"Intro","href":"#m1","children":[{"title":"Why","href":"#m1--p1--why"}]}]`,
		"assets/modules.json":  `{"modules":[{"id":"m1","pages":[{"slug":"p1","href":"pages/m1/p1.html"}]}]}`,
		"sections.json":        `[]`,
	}}

	set := newTestLoader(src).Load(context.Background())

	if len(set.Sections) != 1 || set.Sections[0].Title != "Intro" {
		t.Fatalf("unexpected sections: %+v", set.Sections)
	}
	if len(set.Sections[0].Children) != 1 || set.Sections[0].Children[0].Href != "#m1--p1--why" {
		t.Errorf("unexpected children: %+v", set.Sections[0].Children)
	}
	if set.SectionsFrom != "assets/sections.json" || set.PagesFrom != "assets/modules.json" {
		t.Errorf("unexpected sources: %q %q", set.SectionsFrom, set.PagesFrom)
	}
	// First match wins: the fallback candidates are never tried.
	want := []string{"assets/sections.json", "assets/modules.json"}
	if len(src.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, src.calls)
	}
	for i := range want {
		if src.calls[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], src.calls[i])
		}
	}
}

func TestLoad_FallsBackInOrder(t *testing.T) {
	src := &fakeSource{
		files: map[string]string{
			"sections.json":       `[{"title":"A","href":"#a"}]`,
			"assets/modules.json": `not json`,
			"modules.json":        `{"modules":[{"id":"a","pages":[]}]}`,
		},
		fail: map[string]bool{"assets/sections.json": true},
	}

	set := newTestLoader(src).Load(context.Background())

	if set.SectionsFrom != "sections.json" {
		t.Errorf("expected sections from fallback, got %q", set.SectionsFrom)
	}
	if set.PagesFrom != "modules.json" {
		t.Errorf("expected pages from fallback after invalid json, got %q", set.PagesFrom)
	}
	if len(set.Pages.Modules) != 1 || set.Pages.Modules[0].ID != "a" {
		t.Errorf("unexpected modules: %+v", set.Pages.Modules)
	}
}

func TestLoad_AllCandidatesFail(t *testing.T) {
	src := &fakeSource{fail: map[string]bool{"assets/sections.json": true}}

	set := newTestLoader(src).Load(context.Background())

	if set.Sections == nil || len(set.Sections) != 0 {
		t.Errorf("expected empty non-nil section tree, got %#v", set.Sections)
	}
	if set.Pages.Modules == nil || len(set.Pages.Modules) != 0 {
		t.Errorf("expected empty non-nil module list, got %#v", set.Pages.Modules)
	}
	if set.SectionsFrom != "" || set.PagesFrom != "" {
		t.Errorf("expected no sources, got %q %q", set.SectionsFrom, set.PagesFrom)
	}
	if len(src.calls) != 4 {
		t.Errorf("expected every candidate tried once, got %v", src.calls)
	}
}

func TestLoad_NullManifestsBecomeEmpty(t *testing.T) {
	src := &fakeSource{files: map[string]string{
		"assets/sections.json": `null`,
		"assets/modules.json":  `{}`,
	}}
	set := newTestLoader(src).Load(context.Background())
	if set.Sections == nil || set.Pages.Modules == nil {
		t.Fatalf("expected empty defaults, got %#v", set)
	}
}

func TestStore_GetNeverNil(t *testing.T) {
	s := NewStore()
	if s.Get() == nil {
		t.Fatal("expected empty set from a new store")
	}
	s.Set(nil)
	if s.Get() == nil {
		t.Fatal("expected Set(nil) to publish the empty default")
	}

	src := &fakeSource{files: map[string]string{
		"modules.json": `{"modules":[{"id":"x","pages":[{"slug":"p","href":"x.html"}]}]}`,
	}}
	got := s.Reload(context.Background(), newTestLoader(src))
	if s.Get() != got {
		t.Error("expected Reload to publish the loaded set")
	}
	if len(s.Get().Pages.Modules) != 1 {
		t.Errorf("expected reloaded modules, got %+v", s.Get().Pages)
	}
}
