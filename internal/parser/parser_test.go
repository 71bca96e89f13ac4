package parser

import (
	"strings"
	"testing"
)

func TestForFile(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"pages/a.html", "parser.HTMLConverter"},
		{"pages/a.HTM?v=1", "parser.HTMLConverter"},
		{"pages/a", "parser.HTMLConverter"},
		{"pages/a.md#x", "*parser.MarkdownConverter"},
		{"pages/a.txt", "parser.TreeConverter"},
		{"pages/a.csv", "*parser.CSVConverter"},
		{"pages/a.pdf", "parser.TreeConverter"},
		{"pages/a.docx", "parser.TreeConverter"},
	}
	for _, tt := range tests {
		got := typeName(ForFile(tt.href, Options{}))
		if got != tt.want {
			t.Errorf("ForFile(%q) = %s, want %s", tt.href, got, tt.want)
		}
	}
}

func typeName(c Converter) string {
	switch c.(type) {
	case HTMLConverter:
		return "parser.HTMLConverter"
	case *MarkdownConverter:
		return "*parser.MarkdownConverter"
	case TreeConverter:
		return "parser.TreeConverter"
	case *CSVConverter:
		return "*parser.CSVConverter"
	}
	return "unknown"
}

func TestExtAndBaseName(t *testing.T) {
	if got := Ext("https://x.example/p/Intro.MD?raw=1"); got != ".md" {
		t.Errorf("Ext: got %q", got)
	}
	if got := BaseName("pages/m1/intro.html?x#y"); got != "intro" {
		t.Errorf("BaseName: got %q", got)
	}
}

func TestCSVConverter(t *testing.T) {
	input := "name,score\nAda,<b>10</b>\nLin,9,extra\n"
	got, err := (&CSVConverter{}).Convert([]byte(input), "grades.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"<thead><tr><th>name</th><th>score</th></tr></thead>",
		"<tr><td>Ada</td><td>&lt;b&gt;10&lt;/b&gt;</td></tr>",
		"<tr><td>Lin</td><td>9</td><td>extra</td></tr>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestHTMLParser_Outline(t *testing.T) {
	input := `<h1 id="top">Page</h1>
<h2 id="sec-a"><span class="sec-num">1.1 </span>Alpha</h2>
<p>x</p>
<h3 id="sec-a1">Alpha one</h3>
<h2 id="sec-b">Beta</h2>
<script>document.write("<h2 id='sec-evil'>x</h2>")</script>`
	tree, err := (&HTMLParser{}).Parse(strings.NewReader(input), "pages/p.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(tree.IDs(), ","); got != "top,sec-a,sec-a1,sec-b" {
		t.Errorf("unexpected ids %q", got)
	}
	h1 := tree.Children[0]
	if len(h1.Children) != 2 || h1.Children[0].Title != "Alpha" {
		t.Errorf("expected numbering label stripped and h2s nested under h1, got %+v", h1.Children)
	}
}

func TestTreeConverter_Text(t *testing.T) {
	got, err := ForFile("notes.txt", Options{}).Convert([]byte("Intro\n=====\n\nHello <you>"), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<h2 id=\"sec-intro\">Intro</h2>\n<p>Hello &lt;you&gt;</p>\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
