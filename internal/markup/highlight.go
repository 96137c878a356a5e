package markup

import (
	stdhtml "html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/niklasfasching/go-org/org"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// highlight tokenises source with chroma and writes class-based HTML.
// Returns false when the caller should fall back to plain output.
func highlight(w *strings.Builder, source, lang string) bool {
	l := lexers.Get(lang)
	if l == nil {
		l = lexers.Fallback
	}
	it, err := l.Tokenise(nil, source)
	if err != nil {
		return false
	}
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	style := styles.Get("friendly")
	if style == nil {
		style = styles.Fallback
	}
	if err := formatter.Format(w, style, it); err != nil {
		return false
	}
	return true
}

// orgHTMLWriter returns an org HTML writer configured to use chroma for
// syntax highlighting.
func orgHTMLWriter() *org.HTMLWriter {
	writer := org.NewHTMLWriter()
	writer.HighlightCodeBlock = func(source, lang string, inline bool, params map[string]string) string {
		var w strings.Builder
		if !highlight(&w, source, lang) {
			return source
		}
		if inline {
			return `<div class="highlight-inline">` + "\n" + w.String() + "\n" + `</div>`
		}
		return `<div class="highlight">` + "\n" + w.String() + "\n" + `</div>`
	}
	return writer
}

// codeBlockRenderer swaps goldmark's fenced code output for chroma's.
type codeBlockRenderer struct{}

func (codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, renderFencedCodeBlock)
}

func renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(source))
	}

	var out strings.Builder
	if highlight(&out, code.String(), string(n.Language(source))) {
		w.WriteString(`<div class="highlight">` + "\n" + out.String() + "\n" + `</div>`)
	} else {
		w.WriteString("<pre><code>")
		w.WriteString(stdhtml.EscapeString(code.String()))
		w.WriteString("</code></pre>\n")
	}
	return ast.WalkContinue, nil
}
