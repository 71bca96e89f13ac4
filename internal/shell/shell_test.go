package shell

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docshell/internal/content"
	"github.com/dgallion1/docshell/internal/fetch"
	"github.com/dgallion1/docshell/internal/manifest"
	"github.com/dgallion1/docshell/internal/route"
	"github.com/dgallion1/docshell/internal/sidebar"
)

const sectionsJSON = `[
  {"title": "Loops", "href": "#m1", "children": [
    {"title": "Why", "href": "#m1--p1--why"},
    {"title": "Syntax", "href": "#m1--p2--syntax"},
    {"title": "Gone", "href": "#m1--p2--gone"}
  ]}
]`

const modulesJSON = `{"modules": [
  {"id": "m1", "pages": [
    {"slug": "p1", "href": "pages/a.html"},
    {"slug": "p2", "href": "pages/b.md"}
  ]}
]}`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestShell(t *testing.T) *Shell {
	t.Helper()
	s, _ := newTestShellAt(t)
	return s
}

func newTestShellAt(t *testing.T) (*Shell, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "assets/sections.json", sectionsJSON)
	writeFile(t, root, "modules.json", modulesJSON)
	writeFile(t, root, "pages/a.html", `<h2 id="sec-why">Why</h2><p>Because.</p>`)
	writeFile(t, root, "pages/b.md", "## Syntax\n\n`for {}`\n")

	src, err := fetch.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	loader := manifest.NewLoader(src,
		[]string{"assets/sections.json", "sections.json"},
		[]string{"assets/modules.json", "modules.json"},
		nil)
	return New(manifest.NewStore(), loader, src, Options{}, nil), root
}

func TestBoot(t *testing.T) {
	s := newTestShell(t)

	boot := s.Boot(context.Background(), "#m1--p1--why")

	if boot.Panel["aria-expanded"] != "false" {
		t.Errorf("expected panel closed at boot, got %v", boot.Panel)
	}
	if len(boot.Sidebar.Items) != 1 || len(boot.Sidebar.Items[0].Children) != 3 {
		t.Fatalf("unexpected sidebar: %+v", boot.Sidebar)
	}
	if !boot.Sidebar.Items[0].Children[0].Active {
		t.Error("expected the why link active")
	}
	if !strings.Contains(boot.SidebarHTML, `class="active"`) {
		t.Errorf("expected active class in sidebar html, got %s", boot.SidebarHTML)
	}
	if boot.View.Status != content.StatusOK {
		t.Fatalf("expected ok view, got %+v", boot.View)
	}
	if !strings.Contains(boot.View.HTML, `<span class="sec-num">1.1 </span>Why`) {
		t.Errorf("expected numbered heading, got %s", boot.View.HTML)
	}
	if boot.View.Scroll.Target != "sec-why" {
		t.Errorf("expected scroll to sec-why, got %+v", boot.View.Scroll)
	}

	set := s.Manifests()
	if set.SectionsFrom != "assets/sections.json" || set.PagesFrom != "modules.json" {
		t.Errorf("unexpected candidates used: %q %q", set.SectionsFrom, set.PagesFrom)
	}
}

func TestNavigateBeforeBoot(t *testing.T) {
	s := newTestShell(t)
	view := s.Navigate(context.Background(), "m1--p1")
	if view.Status != content.StatusEmpty {
		t.Errorf("expected empty view before manifests load, got %s", view.Status)
	}
}

func TestBoot_ServesPublishedManifests(t *testing.T) {
	s, root := newTestShellAt(t)
	s.Boot(context.Background(), "")

	writeFile(t, root, "assets/sections.json", `[{"title":"Renamed","href":"#m1"}]`)
	if got := s.Boot(context.Background(), "").Sidebar.Items[0].Label; got != "Loops" {
		t.Errorf("expected boot to reuse the loaded manifests, got %q", got)
	}

	s.Reload(context.Background())
	if got := s.Boot(context.Background(), "").Sidebar.Items[0].Label; got != "Renamed" {
		t.Errorf("expected the reloaded manifests after Reload, got %q", got)
	}
}

func TestBoot_PanelIsPerClient(t *testing.T) {
	s := newTestShell(t)
	first := s.Boot(context.Background(), "")

	// A browser opening its own panel is not visible to the next boot.
	p := sidebar.Panel{Open: first.Panel["aria-expanded"] == "true"}
	if err := p.Handle(sidebar.PanelToggle); err != nil || !p.Open {
		t.Fatalf("expected toggle to open, got open=%v err=%v", p.Open, err)
	}
	if got := s.Boot(context.Background(), "").Panel["aria-expanded"]; got != "false" {
		t.Errorf("expected every boot to start closed, got %q", got)
	}
}

func TestClick(t *testing.T) {
	s := newTestShell(t)
	s.Boot(context.Background(), "")

	view := s.Click(context.Background(), "index.html#m1--p2--syntax")
	if view.Href != "pages/b.md" || view.Fragment != "m1--p2--syntax" {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Active) != 1 || view.Active[0] != "#m1--p2--syntax" {
		t.Errorf("expected the clicked link active, got %v", view.Active)
	}
}

func TestSidebar(t *testing.T) {
	s := newTestShell(t)
	s.Boot(context.Background(), "")
	nav := s.Sidebar("m1--p2--syntax")
	if got := nav.Active(); len(got) != 1 || got[0] != "#m1--p2--syntax" {
		t.Errorf("unexpected active links %v", got)
	}
	if got := s.Sidebar("m1--p2--syntax--").Active(); len(got) != 0 {
		t.Errorf("expected a trailing delimiter to match nothing, got %v", got)
	}
}

func TestValidate_MissingHeading(t *testing.T) {
	s := newTestShell(t)
	s.Boot(context.Background(), "")

	issues := s.Validate(context.Background())
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %v", issues)
	}
	if issues[0].Kind != route.IssueMissingHeading || issues[0].Href != "#m1--p2--gone" {
		t.Errorf("unexpected issue %+v", issues[0])
	}
}
