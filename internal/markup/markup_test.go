package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRenderer() *Renderer {
	return NewRenderer(func(target string) string {
		return "/" + strings.ToLower(target)
	})
}

func TestSplit(t *testing.T) {
	t.Run("header and body", func(t *testing.T) {
		meta, body := Split("title: Test\ntags: one, two, 3\n\nHello world")
		title, ok := meta.Get("title")
		require.True(t, ok)
		assert.Equal(t, "Test", title)
		tags, _ := meta.Get("tags")
		assert.Equal(t, "one, two, 3", tags)
		assert.Equal(t, "Hello world", body)
	})

	t.Run("no header keeps full body", func(t *testing.T) {
		meta, body := Split("Just some text\n\nwith paragraphs")
		assert.Equal(t, 0, meta.Len())
		assert.Equal(t, "Just some text\n\nwith paragraphs", body)
	})

	t.Run("continuation lines join the previous value", func(t *testing.T) {
		meta, body := Split("summary: first\n    second\n\nBody")
		summary, _ := meta.Get("summary")
		assert.Equal(t, "first\nsecond", summary)
		assert.Equal(t, "Body", body)
	})

	t.Run("crlf input is normalized", func(t *testing.T) {
		meta, body := Split("title: A\r\n\r\nBody\r\n")
		title, _ := meta.Get("title")
		assert.Equal(t, "A", title)
		assert.Equal(t, "Body\n", body)
	})

	t.Run("header ends at first non-header line", func(t *testing.T) {
		meta, body := Split("title: A\nplain text without separator\n\nBody")
		assert.Equal(t, 1, meta.Len())
		assert.Equal(t, "plain text without separator\n\nBody", body)
	})
}

func TestSerializeRoundTrip(t *testing.T) {
	sources := []string{
		"title: Test\ntags: one, two, 3\n\nHello world\n",
		"title: T\n\n\nBody with leading blank\n",
		"title: Home\ntags: \n\n# Heading\n\ntext\n",
	}
	for _, source := range sources {
		meta, body := Split(source)
		assert.Equal(t, source, Serialize(meta, body))
	}
}

func TestSerializeNormalizesCRLF(t *testing.T) {
	meta, body := Split("title: T\n\nline one\r\nline two")
	got := Serialize(meta, body)
	assert.NotContains(t, got, "\r")
	assert.Contains(t, got, "line one\nline two")
}

func TestRenderMarkdown(t *testing.T) {
	r := testRenderer()

	html, err := r.Render("# Hello\n\nSome *emphasis*.", Markdown)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>emphasis</em>")
}

func TestRenderMarkdownTable(t *testing.T) {
	r := testRenderer()

	html, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |", Markdown)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")
}

func TestRenderFencedCodeUsesChroma(t *testing.T) {
	r := testRenderer()

	html, err := r.Render("```go\npackage main\n```", Markdown)
	require.NoError(t, err)
	assert.Contains(t, html, `<div class="highlight">`)
	assert.Contains(t, html, "package")
	assert.NotContains(t, html, "<pre><code>package")
}

func TestRenderOrg(t *testing.T) {
	r := testRenderer()

	html, err := r.Render("* Heading\n\nSome text.", Org)
	require.NoError(t, err)
	assert.Contains(t, html, "Heading")
	assert.Contains(t, html, "Some text.")
	assert.NotContains(t, html, "* Heading")
}

func TestProcess(t *testing.T) {
	r := testRenderer()

	html, body, meta, err := r.Process("title: Test\n\nHello [[Other Page]]!", Markdown)
	require.NoError(t, err)
	title, _ := meta.Get("title")
	assert.Equal(t, "Test", title)
	assert.Equal(t, "Hello [[Other Page]]!", body)
	assert.Contains(t, html, `<a href="/other page">Other Page</a>`)
}

func TestResolveWikiLinks(t *testing.T) {
	urlFor := func(target string) string { return "/" + strings.ToLower(target) }

	t.Run("bare target", func(t *testing.T) {
		got := ResolveWikiLinks("<p>see [[Home]]</p>", urlFor)
		assert.Equal(t, `<p>see <a href="/home">Home</a></p>`, got)
	})

	t.Run("labelled target", func(t *testing.T) {
		got := ResolveWikiLinks("<p>[[Other Page|the docs]]</p>", urlFor)
		assert.Equal(t, `<p><a href="/other page">the docs</a></p>`, got)
	})

	t.Run("inside code is untouched", func(t *testing.T) {
		got := ResolveWikiLinks("<p><code>[[Home]]</code></p>", urlFor)
		assert.Equal(t, "<p><code>[[Home]]</code></p>", got)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		got := ResolveWikiLinks("[[ Home | start here ]]", urlFor)
		assert.Equal(t, `<a href="/home">start here</a>`, got)
	})
}

func TestWikiLinkInsideCodeSpan(t *testing.T) {
	r := testRenderer()

	html, err := r.Render("Use `[[target]]` to link pages.", Markdown)
	require.NoError(t, err)
	assert.Contains(t, html, "<code>[[target]]</code>")
	assert.NotContains(t, html, "<a href")
}

func TestFormatForPath(t *testing.T) {
	f, ok := FormatForPath("content/home_v1.md")
	require.True(t, ok)
	assert.Equal(t, Markdown, f)

	f, ok = FormatForPath("notes.ORG")
	require.True(t, ok)
	assert.Equal(t, Org, f)

	_, ok = FormatForPath("picture.png")
	assert.False(t, ok)
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".md", ExtensionFor(Markdown))
	assert.Equal(t, ".org", ExtensionFor(Org))
}
