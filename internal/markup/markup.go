// Package markup turns page source files into HTML. A page starts with a
// header block of "key: value" lines, a blank line, then the body. Bodies
// are Markdown or Org; both get chroma-highlighted code blocks, and wiki
// links ([[target]], [[target|Label]]) are resolved after rendering.
package markup

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/niklasfasching/go-org/org"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

// Format identifies a page's source markup.
type Format string

const (
	Markdown Format = "markdown"
	Org      Format = "org"
)

// Extensions lists the file extensions the wiki serves, in preference order.
var Extensions = []string{".md", ".org"}

// Formats lists the selectable formats for new pages.
func Formats() []string {
	return []string{string(Markdown), string(Org)}
}

// FormatForPath maps a file name to its markup format.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return Markdown, true
	case ".org":
		return Org, true
	}
	return "", false
}

// ExtensionFor returns the file extension used when writing the format.
func ExtensionFor(f Format) string {
	if f == Org {
		return ".org"
	}
	return ".md"
}

// Renderer converts page source into HTML.
type Renderer struct {
	md     goldmark.Markdown
	urlFor func(target string) string
}

// NewRenderer returns a renderer whose wiki links are resolved through
// urlFor. A nil urlFor links targets verbatim under "/".
func NewRenderer(urlFor func(string) string) *Renderer {
	if urlFor == nil {
		urlFor = func(target string) string { return "/" + target }
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				ghtml.WithUnsafe(),
				renderer.WithNodeRenderers(
					util.Prioritized(codeBlockRenderer{}, 200),
				),
			),
		),
		urlFor: urlFor,
	}
}

// Process runs the full pipeline on raw page source: header split, body
// rendering, wiki link resolution.
func (r *Renderer) Process(source string, format Format) (html, body string, meta *models.Meta, err error) {
	meta, body = Split(source)
	html, err = r.Render(body, format)
	if err != nil {
		return "", "", nil, err
	}
	return html, body, meta, nil
}

// Render converts a page body (no header block) to HTML in the given
// format and resolves wiki links.
func (r *Renderer) Render(body string, format Format) (string, error) {
	var html string
	switch format {
	case Org:
		out, err := org.New().Parse(strings.NewReader(body), "").Write(orgHTMLWriter())
		if err != nil {
			return "", fmt.Errorf("render org: %w", err)
		}
		html = out
	default:
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(body), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		html = buf.String()
	}
	return ResolveWikiLinks(html, r.urlFor), nil
}

// Split separates the header block from the body. Headers are leading
// "key: value" lines up to the first blank line; indented lines continue
// the previous value. Files that do not start with a header line have no
// metadata and keep their full contents as body.
func Split(source string) (*models.Meta, string) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	meta := models.NewMeta()

	lines := strings.Split(source, "\n")
	i := 0
	lastKey := ""
	for ; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			i++ // swallow the separator
			break
		}
		if lastKey != "" && (strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")) {
			v, _ := meta.Get(lastKey)
			meta.Set(lastKey, v+"\n"+strings.TrimSpace(line))
			continue
		}
		key, value, ok := metaLine(line)
		if !ok {
			break
		}
		meta.Set(key, value)
		lastKey = key
	}
	if meta.Len() == 0 {
		return meta, source
	}
	return meta, strings.Join(lines[i:], "\n")
}

// Serialize writes the on-disk page form: header lines in order, a blank
// line, then the body with CRLF normalized away. Multi-line values are
// emitted as indented continuation lines so they survive a reload.
func Serialize(meta *models.Meta, body string) string {
	var b strings.Builder
	for _, key := range meta.Keys() {
		value, _ := meta.Get(key)
		parts := strings.Split(strings.ReplaceAll(value, "\r\n", "\n"), "\n")
		fmt.Fprintf(&b, "%s: %s\n", key, parts[0])
		for _, cont := range parts[1:] {
			fmt.Fprintf(&b, "    %s\n", cont)
		}
	}
	b.WriteString("\n")
	b.WriteString(strings.ReplaceAll(body, "\r\n", "\n"))
	return b.String()
}

func metaLine(line string) (key, value string, ok bool) {
	colon := strings.Index(line, ":")
	if colon <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:colon])
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(line[colon+1:]), true
}
