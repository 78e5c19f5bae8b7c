package doc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var markupTags = map[Kind]string{
	KindDocument: "main",
	KindPage:     "section",
	KindView:     "div",
	KindText:     "div",
	KindLink:     "a",
	KindImage:    "img",
	KindSvg:      "svg",
	KindPath:     "path",
	KindCircle:   "circle",
}

func (r *Renderer) renderMarkup(w io.Writer, root *Node) error {
	nodes, err := r.markup(root)
	if err != nil {
		return err
	}

	if root.Kind == KindDocument {
		return html.Render(w, pageShell(root.Meta, nodes))
	}
	for _, n := range nodes {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render markup: %w", err)
		}
	}
	return nil
}

// markup converts n into HTML nodes. Raw content may expand to several.
func (r *Renderer) markup(n *Node) ([]*html.Node, error) {
	switch n.Kind {
	case KindString:
		return []*html.Node{{Type: html.TextNode, Data: n.Text}}, nil
	case KindRaw:
		nodes, err := html.ParseFragment(strings.NewReader(n.Text), element("body"))
		if err != nil {
			return nil, fmt.Errorf("parse raw markup: %w", err)
		}
		return nodes, nil
	}

	tag, ok := markupTags[n.Kind]
	if !ok {
		return nil, fmt.Errorf("render markup: unsupported node kind %s", n.Kind)
	}
	el := element(tag)

	if n.Class != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "class", Val: n.Class})
	}
	st := r.Style(n)
	if n.Kind == KindPath {
		st = st.Clone()
		st["strokeLinejoin"] = "round"
	}
	if css := st.CSS(); css != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: css})
	}
	el.Attr = append(el.Attr, kindAttrs(n)...)

	for _, c := range n.Children {
		kids, err := r.markup(c)
		if err != nil {
			return nil, err
		}
		for _, k := range kids {
			el.AppendChild(k)
		}
	}
	return []*html.Node{el}, nil
}

func kindAttrs(n *Node) []html.Attribute {
	var attrs []html.Attribute
	add := func(k, v string) {
		if v != "" {
			attrs = append(attrs, html.Attribute{Key: k, Val: v})
		}
	}
	num := func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	switch n.Kind {
	case KindLink:
		add("href", n.Href)
	case KindImage:
		add("src", n.Src)
		add("alt", n.Alt)
	case KindSvg:
		add("xmlns", "http://www.w3.org/2000/svg")
		if n.Box.Width > 0 {
			add("width", num(n.Box.Width))
		}
		if n.Box.Height > 0 {
			add("height", num(n.Box.Height))
		}
		add("viewBox", n.Box.ViewBox)
	case KindPath:
		add("d", n.D)
		attrs = append(attrs, shapeAttrs(n.Shape)...)
		add("stroke-linejoin", "round")
	case KindCircle:
		add("cx", num(n.CX))
		add("cy", num(n.CY))
		add("r", num(n.R))
		attrs = append(attrs, shapeAttrs(n.Shape)...)
	}
	return attrs
}

func shapeAttrs(s Shape) []html.Attribute {
	var attrs []html.Attribute
	if s.Fill != "" {
		attrs = append(attrs, html.Attribute{Key: "fill", Val: s.Fill})
	}
	if s.Stroke != "" {
		attrs = append(attrs, html.Attribute{Key: "stroke", Val: s.Stroke})
	}
	if s.StrokeWidth > 0 {
		attrs = append(attrs, html.Attribute{Key: "stroke-width", Val: strconv.FormatFloat(s.StrokeWidth, 'f', -1, 64)})
	}
	return attrs
}

// pageShell wraps body content in a complete HTML document.
func pageShell(meta Meta, body []*html.Node) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element("html", html.Attribute{Key: "lang", Val: "en"})
	head := element("head")
	head.AppendChild(element("meta", html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(element("meta",
		html.Attribute{Key: "name", Val: "viewport"},
		html.Attribute{Key: "content", Val: "width=device-width, initial-scale=1"},
	))
	if meta.Description != "" {
		head.AppendChild(element("meta",
			html.Attribute{Key: "name", Val: "description"},
			html.Attribute{Key: "content", Val: meta.Description},
		))
	}
	if meta.Author != "" {
		head.AppendChild(element("meta",
			html.Attribute{Key: "name", Val: "author"},
			html.Attribute{Key: "content", Val: meta.Author},
		))
	}
	title := element("title")
	title.AppendChild(&html.Node{Type: html.TextNode, Data: meta.Title})
	head.AppendChild(title)

	bodyEl := element("body")
	for _, n := range body {
		bodyEl.AppendChild(n)
	}

	htmlEl.AppendChild(head)
	htmlEl.AppendChild(bodyEl)
	root.AppendChild(htmlEl)
	return root
}

func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}
