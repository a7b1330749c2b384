package web

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	gmext "github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// answerMarkdown renders model answers. Raw HTML in the source is omitted and
// dangerous link targets are dropped because html.WithUnsafe is not set.
var answerMarkdown = goldmark.New(
	goldmark.WithExtensions(gmext.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts an answer to HTML for the form page. If rendering
// fails the text is shown escaped.
func (s *Server) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := answerMarkdown.Convert([]byte(text), &buf); err != nil {
		s.logger.Warn("failed to render answer markdown", "error", err)
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}
