package parser

import (
	"strings"
	"testing"
)

func TestMarkdownConverter_SectionIDs(t *testing.T) {
	input := `# Boucles

Intro text.

## Pourquoi itérer

Text.

## Pourquoi itérer

Again.

## Syntaxe {#sec-syntax}
`
	got, err := NewMarkdownConverter().Convert([]byte(input), "pages/m1/loops.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		`<h1 id="sec-boucles">Boucles</h1>`,
		`<h2 id="sec-pourquoi-itérer">Pourquoi itérer</h2>`,
		`<h2 id="sec-pourquoi-itérer-2">Pourquoi itérer</h2>`,
		`<h2 id="sec-syntax">Syntaxe</h2>`,
		`<p>Intro text.</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestMarkdownConverter_IDsResetPerPage(t *testing.T) {
	c := NewMarkdownConverter()
	for i := 0; i < 2; i++ {
		got, err := c.Convert([]byte("## Intro\n"), "a.md")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(got, `id="sec-intro"`) {
			t.Errorf("pass %d: expected sec-intro id, got %q", i, got)
		}
	}
}

func TestMarkdownConverter_CodeBlocksAndTables(t *testing.T) {
	input := "## Exemple\n\n```go\nfmt.Println(\"hi\")\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	got, err := NewMarkdownConverter().Convert([]byte(input), "ex.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "<pre") {
		t.Errorf("expected a highlighted code block, got:\n%s", got)
	}
	if !strings.Contains(got, "<table>") {
		t.Errorf("expected a GFM table, got:\n%s", got)
	}
}

func TestMarkdownConverter_EmptyInput(t *testing.T) {
	got, err := NewMarkdownConverter().Convert(nil, "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(got) != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}
