// Package render owns the shared presentation config: the markup rule
// table handed to render collaborators and terminal markdown rendering.
package render

import (
	"github.com/charmbracelet/glamour"

	"github.com/multi-agent/go-research-ui/pkg/logger"
)

// MarkupRule describes how one markdown element is rendered. The web
// gateway serves the table as JSON so the frontend styles answers the same
// way the terminal does.
type MarkupRule struct {
	Element     string `json:"element"`
	Markdown    string `json:"markdown"`
	Description string `json:"description"`
}

// ConfigTable returns the static markup configuration for answer text.
func ConfigTable() []MarkupRule {
	return []MarkupRule{
		{Element: "heading", Markdown: "#, ##, ###", Description: "section headings, three levels"},
		{Element: "list", Markdown: "-, 1.", Description: "unordered and ordered lists"},
		{Element: "code", Markdown: "``` ... ```", Description: "fenced code blocks with language tag"},
		{Element: "inline_code", Markdown: "`code`", Description: "inline code spans"},
		{Element: "table", Markdown: "| a | b |", Description: "pipe tables with header row"},
		{Element: "link", Markdown: "[label](url)", Description: "inline links, citations included"},
		{Element: "blockquote", Markdown: "> quote", Description: "quoted source excerpts"},
		{Element: "emphasis", Markdown: "*em*, **strong**", Description: "italic and bold emphasis"},
	}
}

// Markdown renders answer text for a terminal at the given width. Render
// failures fall back to the raw text; an answer must never be lost to a
// styling bug.
func Markdown(text string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logger.Warn("markdown renderer init failed", logger.FieldError, err)
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		logger.Warn("markdown render failed", logger.FieldError, err)
		return text
	}
	return out
}
