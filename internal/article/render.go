package article

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dmacdonald/folio/internal/editor"
	"github.com/dmacdonald/folio/internal/style"
)

// ParagraphClass is the utility class applied to every paragraph.
const ParagraphClass = "py-2"

// Renderer converts markdown sources into articles.
type Renderer struct {
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewRenderer builds a goldmark pipeline whose paragraph and fenced code
// renderers are replaced; everything else uses the goldmark defaults.
func NewRenderer(ed *editor.Editor, conv *style.Converter, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	nr := &nodeRenderer{
		editor:       ed,
		paragraphCSS: conv.Convert(ParagraphClass).CSS(),
		logger:       logger,
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			meta.New(meta.WithStoresInDocument()),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(nr, 100)),
		),
	)
	return &Renderer{md: md, logger: logger}
}

// Render parses and renders src.
func (r *Renderer) Render(src *Source) (*Article, error) {
	root := r.md.Parser().Parse(text.NewReader(src.Body))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, src.Body, root); err != nil {
		return nil, fmt.Errorf("render article: %w", err)
	}

	a := &Article{
		HTML:    buf.String(),
		Hash:    src.Hash(),
		ModTime: src.ModTime,
		root:    root,
		source:  src.Body,
	}

	if d, ok := root.(*ast.Document); ok {
		fm := d.Meta()
		a.Title = metaString(fm, "title")
		a.Author = metaString(fm, "author")
		a.Description = metaString(fm, "description")
	}
	if a.Title == "" {
		a.Title = firstHeading(root, src.Body)
	}
	if a.Title == "" {
		a.Title = titleFromPath(src.Path)
	}
	return a, nil
}

func metaString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return ""
}

func firstHeading(root ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = inlineText(h, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// inlineText concatenates the text below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// codeText returns the literal content of a code block without its final
// newline.
func codeText(n ast.Node, source []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type nodeRenderer struct {
	editor       *editor.Editor
	paragraphCSS string
	logger       *slog.Logger
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *nodeRenderer) renderParagraph(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<p class="` + ParagraphClass + `"`)
		if r.paragraphCSS != "" {
			_, _ = w.WriteString(` style="`)
			_, _ = w.Write(util.EscapeHTML([]byte(r.paragraphCSS)))
			_ = w.WriteByte('"')
		}
		_ = w.WriteByte('>')
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</p>\n")
	return ast.WalkContinue, nil
}

func (r *nodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	lang := string(n.Language(source))
	code := codeText(n, source)

	if lang != "" && r.editor != nil && r.editor.Supports(lang) {
		var buf bytes.Buffer
		err := r.editor.Render(&buf, code, lang)
		if err == nil {
			_, _ = w.Write(buf.Bytes())
			_ = w.WriteByte('\n')
			return ast.WalkSkipChildren, nil
		}
		r.logger.Debug("highlight failed, using plain code", "lang", lang, "error", err)
	}

	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML([]byte(code)))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
