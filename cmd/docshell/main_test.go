package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docshell/internal/config"
)

func setupSite(t *testing.T, sections string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"assets/sections.json": sections,
		"assets/modules.json":  `{"modules":[{"id":"m1","pages":[{"slug":"p1","href":"pages/a.html"},{"slug":"p2","href":"pages/b.html"}]}]}`,
		"pages/a.html":         `<h2 id="sec-why">Why</h2>`,
		"pages/b.html":         `<h2 id="sec-how">How</h2>`,
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cfg := config.Default()
	cfg.ContentRoot = root
	cfg.LogLevel = "error"
	cfgPath := filepath.Join(root, "docshell.yml")
	if err := cfg.Save(cfgPath); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	cfgPath := setupSite(t, `[{"title":"M","href":"#m1"}]`)

	tests := []struct {
		fragment string
		want     string
	}{
		{"#m1--p2", "pages/b.html"},
		{"unknown--x", "pages/a.html"},
		{"", "pages/a.html"},
	}
	for _, tt := range tests {
		out, err := run(t, "--config", cfgPath, "resolve", tt.fragment)
		if err != nil {
			t.Fatalf("resolve %q: %v", tt.fragment, err)
		}
		if strings.TrimSpace(out) != tt.want {
			t.Errorf("resolve %q = %q, want %q", tt.fragment, strings.TrimSpace(out), tt.want)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	good := setupSite(t, `[{"title":"M","href":"#m1","children":[{"title":"Why","href":"#m1--p1--why"}]}]`)
	out, err := run(t, "--config", good, "validate")
	if err != nil {
		t.Fatalf("expected consistent manifests, got %v: %s", err, out)
	}

	bad := setupSite(t, `[{"title":"M","href":"#m1","children":[{"title":"Why","href":"#m1--p2--why"}]},{"title":"X","href":"#m9"}]`)
	out, err = run(t, "--config", bad, "validate")
	if err == nil {
		t.Fatal("expected validate to fail")
	}
	for _, want := range []string{"missing_heading", "unknown_module"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docshell.yml")
	if _, err := run(t, "--config", path, "init", "--root", "site"); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ContentRoot != "site" {
		t.Errorf("expected content root site, got %q", cfg.ContentRoot)
	}
	if _, err := run(t, "--config", path, "init"); err == nil {
		t.Error("expected init to refuse overwriting")
	}
}
