package markdown

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dgnsrekt/rendercache/internal/cache"
	"github.com/dgnsrekt/rendercache/internal/render"
)

const doc = `---
title: ignored
---
# Hello

| a | b |
|---|---|
| 1 | 2 |

~~gone~~
`

func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"---\ntitle: x\n---\n# Hi\n", "# Hi\n"},
		{"# Hi\n---\n", "# Hi\n---\n"},
		{"---\na: b\n---", ""},
	}
	for _, tt := range tests {
		if got := RemoveFrontmatter(tt.in); got != tt.want {
			t.Errorf("RemoveFrontmatter(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestHTML(t *testing.T) {
	out, err := NewHTML().Render(Props{Source: doc})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if !strings.HasPrefix(out, `<article class="markdown-body">`) || !strings.HasSuffix(out, "</article>") {
		t.Errorf("output is not wrapped in the article: %q", out)
	}
	for _, want := range []string{`<h1 id="hello">Hello</h1>`, "<table>", "<del>gone</del>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("frontmatter leaked into output:\n%s", out)
	}
}

func TestTerminal(t *testing.T) {
	out, err := Terminal{}.Render(Props{Source: "# Hello\n\nsome *text*", Style: "notty", Width: 40})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "text") {
		t.Errorf("unexpected terminal output: %q", out)
	}

	if _, err := (Terminal{}).Render(Props{Source: "x", Style: filepath.Join(t.TempDir(), "missing.json")}); err == nil {
		t.Errorf("expected an error for a missing style file")
	}
}

func TestHTML_ThroughRenderer(t *testing.T) {
	memo, err := cache.NewSync(cache.Config[any, string, []byte]{
		Capacity: 1 << 16,
		OnEvict:  func(cache.Token, cache.Entry[any, string, []byte]) {},
	})
	if err != nil {
		t.Fatalf("NewSync failed: %v", err)
	}

	r := render.NewRenderer(memo, render.Options{})
	page := render.Cache[Props](NewHTML(), nil)
	if got := page.DisplayName(); got != "Cache(HTML)" {
		t.Errorf("DisplayName = %q; want Cache(HTML)", got)
	}

	first, err := r.RenderToString(render.Elem[Props](page, Props{Source: doc}))
	if err != nil {
		t.Fatalf("RenderToString failed: %v", err)
	}
	if !strings.Contains(first, render.ChecksumAttr) {
		t.Errorf("no checksum in %q", first)
	}

	_, hit, err := r.Render(render.Elem[Props](page, Props{Source: doc}))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !hit {
		t.Errorf("second render missed the cache")
	}
	if memo.Len() != 1 {
		t.Errorf("memo holds %d entries; want 1", memo.Len())
	}
}

func TestIsDocument(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.md", true},
		{"sub/x.markdown", true},
		{"deep/er/notes.mkd", true},
		{"a.txt", false},
		{"md", false},
		{"sub.md/readme", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDocument(tt.name); got != tt.want {
			t.Errorf("IsDocument(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestFindDocuments(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.md":              "# b",
		"a.markdown":        "# a",
		"notes.txt":         "plain",
		"sub/c.md":          "# c",
		"sub/deeper/d.mkd":  "# d",
		"sub/deeper/e.json": "{}",
	}
	for name, body := range files {
		file := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := FindDocuments(dir, true)
	if err != nil {
		t.Fatalf("FindDocuments failed: %v", err)
	}

	var names []string
	for _, d := range docs {
		names = append(names, d.Name)
		if !filepath.IsAbs(d.Path) {
			t.Errorf("%s: path %q is not absolute", d.Name, d.Path)
		}
		if !IsDocument(d.Name) {
			t.Errorf("FindDocuments returned %q, which IsDocument rejects", d.Name)
		}
	}
	want := []string{"a.markdown", "b.md", "sub/c.md", "sub/deeper/d.mkd"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v; want %v", names, want)
	}
}
