package article

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/dmacdonald/folio/internal/doc"
)

var headingClasses = map[int]string{
	1: "text-3xl font-bold py-2",
	2: "text-2xl font-bold py-2",
	3: "text-xl font-semibold py-1",
}

const (
	nbsp      = "\u00a0"
	codeClass = "font-mono text-xs text-slate-100"
)

// Document converts the article into document primitives so it can be
// rendered to every target.
func (a *Article) Document() *doc.Node {
	c := converter{source: a.source}
	body := c.blocks(a.root)
	return doc.Document(a.Meta(), "",
		doc.WrapPage("p-12 bg-white",
			doc.View("", body...),
		),
	)
}

type converter struct {
	source []byte
}

func (c converter) blocks(parent ast.Node) []*doc.Node {
	var out []*doc.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if b := c.block(n); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c converter) block(n ast.Node) *doc.Node {
	switch n := n.(type) {
	case *ast.Heading:
		class, ok := headingClasses[n.Level]
		if !ok {
			class = "text-lg font-semibold py-1"
		}
		return doc.Text(class, c.inlines(n)...)
	case *ast.Paragraph:
		return doc.Text(ParagraphClass, c.inlines(n)...)
	case *ast.TextBlock:
		return doc.Text("", c.inlines(n)...)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return c.code(codeText(n, c.source))
	case *ast.Blockquote:
		return doc.View("pl-3 py-1 italic text-slate-600", c.blocks(n)...)
	case *ast.List:
		return c.list(n)
	case *ast.ThematicBreak:
		return doc.View("h-px my-2 bg-slate-300")
	case *east.Table:
		return c.table(n)
	}
	return nil
}

func (c converter) code(code string) *doc.Node {
	var lines []*doc.Node
	for _, l := range strings.Split(code, "\n") {
		trimmed := strings.TrimLeft(l, " \t")
		indent := len(l) - len(trimmed)
		lines = append(lines, doc.Label(codeClass, strings.Repeat(nbsp, indent)+trimmed+nbsp))
	}
	return doc.View("bg-slate-800 p-2 my-2 rounded", lines...)
}

func (c converter) list(n *ast.List) *doc.Node {
	var items []*doc.Node
	index := n.Start
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "•"
		if n.IsOrdered() {
			marker = strconv.Itoa(index) + "."
			index++
		}
		items = append(items, doc.View("flex-row",
			doc.Label("w-6", marker),
			doc.View("", c.blocks(item)...),
		))
	}
	return doc.View("pl-4 py-1", items...)
}

func (c converter) table(n *east.Table) *doc.Node {
	var rows []*doc.Node
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		class := "flex-row py-1"
		if _, ok := row.(*east.TableHeader); ok {
			class += " font-bold"
		}
		var cells []*doc.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, doc.Text("", c.inlines(cell)...))
		}
		rows = append(rows, doc.View(class, cells...))
	}
	return doc.View("py-2", rows...)
}

func (c converter) inlines(parent ast.Node) []*doc.Node {
	var out []*doc.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, c.inline(n)...)
	}
	return out
}

func (c converter) inline(n ast.Node) []*doc.Node {
	switch n := n.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(c.source))
		switch {
		case n.HardLineBreak():
			s += "\n"
		case n.SoftLineBreak():
			s += " "
		}
		return []*doc.Node{doc.String(s)}
	case *ast.String:
		return []*doc.Node{doc.String(string(n.Value))}
	case *ast.CodeSpan:
		return []*doc.Node{doc.Text("font-mono text-teal-800", doc.String(inlineText(n, c.source)))}
	case *ast.Emphasis:
		class := "italic"
		if n.Level >= 2 {
			class = "font-bold"
		}
		return []*doc.Node{doc.Text(class, c.inlines(n)...)}
	case *ast.Link:
		return []*doc.Node{doc.Link(string(n.Destination), "", c.inlines(n)...)}
	case *ast.AutoLink:
		url := string(n.URL(c.source))
		return []*doc.Node{doc.Link(url, "", doc.String(string(n.Label(c.source))))}
	case *ast.Image:
		return []*doc.Node{doc.Image(string(n.Destination), inlineText(n, c.source), "")}
	case *east.Strikethrough:
		return []*doc.Node{doc.Text("line-through", c.inlines(n)...)}
	case *east.TaskCheckBox:
		if n.IsChecked {
			return []*doc.Node{doc.String("[x] ")}
		}
		return []*doc.Node{doc.String("[ ] ")}
	case *ast.RawHTML:
		return nil
	}
	return c.inlines(n)
}
