package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Props are the inputs of a markdown component. They double as the cache
// key, so every field that changes the output belongs here.
type Props struct {
	Source string `json:"source"`
	Style  string `json:"style,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// AutoStyle picks a dark or light style from the terminal background.
const AutoStyle = "auto"

var frontmatter = regexp.MustCompile(`(?s)\A---\r?\n.*?\r?\n---[ \t]*(\r?\n|\z)`)

// RemoveFrontmatter strips a leading YAML frontmatter block.
func RemoveFrontmatter(src string) string {
	return frontmatter.ReplaceAllString(src, "")
}

// HTML renders GitHub flavored markdown into a single article element.
type HTML struct {
	md goldmark.Markdown
}

// NewHTML returns an HTML component.
func NewHTML() *HTML {
	return &HTML{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
	}
}

// Render converts p.Source to HTML. Style and Width are ignored.
func (h *HTML) Render(p Props) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(`<article class="markdown-body">`)
	if err := h.md.Convert([]byte(RemoveFrontmatter(p.Source)), &buf); err != nil {
		return "", fmt.Errorf("unable to convert markdown: %w", err)
	}
	buf.WriteString("</article>")
	return buf.String(), nil
}

// Terminal renders markdown for display in a terminal.
type Terminal struct{}

// Render renders p.Source with glamour using p.Style (a style name, a path
// to a JSON style or AutoStyle) wrapped at p.Width columns.
func (Terminal) Render(p Props) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		styleOption(p.Style),
		glamour.WithWordWrap(max(0, p.Width)),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}

	out, err := r.Render(RemoveFrontmatter(p.Source))
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}

func styleOption(style string) glamour.TermRendererOption {
	if style == "" || style == AutoStyle {
		return glamour.WithAutoStyle()
	}
	return glamour.WithStylePath(style)
}
