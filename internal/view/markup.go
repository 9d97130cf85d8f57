package view

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Markup renders exhibit descriptions. Descriptions are authored as Markdown and
// may embed inline HTML; output always passes through the sanitizer.
type Markup struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	plain  *bluemonday.Policy
}

// NewMarkup builds the description renderer.
func NewMarkup() *Markup {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").OnElements("p", "span", "strong", "em")
	policy.RequireNoFollowOnLinks(true)
	return &Markup{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify),
			goldmark.WithRendererOptions(
				goldmarkHTML.WithHardWraps(),
				goldmarkHTML.WithUnsafe(),
			),
		),
		policy: policy,
		plain:  bluemonday.StrictPolicy(),
	}
}

// HTML converts src to sanitized HTML.
func (m *Markup) HTML(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return template.HTML(template.HTMLEscapeString(src))
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(m.policy.SanitizeBytes(buf.Bytes()))
}

// Text renders src and strips every tag, for meta descriptions.
func (m *Markup) Text(src string) string {
	var buf bytes.Buffer
	in := []byte(src)
	if err := m.md.Convert(in, &buf); err == nil {
		in = buf.Bytes()
	}
	out := html.UnescapeString(string(m.plain.SanitizeBytes(in)))
	return strings.Join(strings.Fields(out), " ")
}
