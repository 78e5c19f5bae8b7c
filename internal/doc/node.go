// Package doc provides document primitives that render either to HTML
// markup or to a paginated PDF from the same tree.
//
// Every constructor merges its default utility classes with the caller's
// override, so both targets resolve the same style for a given node.
package doc

import (
	"time"

	"github.com/dmacdonald/folio/internal/style"
)

// Kind identifies the primitive a Node represents.
type Kind int

const (
	KindDocument Kind = iota
	KindPage
	KindView
	KindText
	KindLink
	KindImage
	KindSvg
	KindPath
	KindCircle
	KindString
	KindRaw
)

var kindNames = [...]string{
	KindDocument: "document",
	KindPage:     "page",
	KindView:     "view",
	KindText:     "text",
	KindLink:     "link",
	KindImage:    "image",
	KindSvg:      "svg",
	KindPath:     "path",
	KindCircle:   "circle",
	KindString:   "string",
	KindRaw:      "raw",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Default classes per primitive.
const (
	documentClass = "relative left-0 right-0 flex min-h-full flex-col p-4 text-base"
	pageClass     = "relative left-0 right-0 flex h-[297mm] w-[210mm] flex-col bg-slate-100 shadow-lg"
	viewClass     = "relative left-0 right-0 flex flex-col"
	textClass     = "font-outfit font-normal relative text-sm"
	linkClass     = "font-outfit font-normal text-teal-800 relative text-sm no-underline"
	imageClass    = linkClass
)

// Meta carries document-level metadata.
type Meta struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Description  string
	CreationDate time.Time
}

// SvgBox sizes an Svg container. Zero values fall back to the view box.
type SvgBox struct {
	Width   float64
	Height  float64
	ViewBox string
}

// Shape holds SVG presentation attributes for Path and Circle.
type Shape struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Node is one element of a document tree.
type Node struct {
	Kind  Kind
	Class string

	Href string // Link
	Src  string // Image
	Alt  string // Image

	D         string  // Path
	CX, CY, R float64 // Circle
	Shape     Shape   // Path, Circle
	Box       SvgBox  // Svg
	Meta      Meta    // Document
	Wrap      bool    // Page
	Text      string  // String, Raw
	Children  []*Node
}

// Document is the root of a tree.
func Document(meta Meta, class string, children ...*Node) *Node {
	return &Node{Kind: KindDocument, Class: style.Merge(documentClass, class), Meta: meta, Children: children}
}

// Page is a fixed-size page. Content that overflows is clipped on the PDF
// target; use WrapPage to continue onto further pages.
func Page(class string, children ...*Node) *Node {
	return &Node{Kind: KindPage, Class: style.Merge(pageClass, class), Children: children}
}

// WrapPage is a Page whose overflowing content continues on a new page.
func WrapPage(class string, children ...*Node) *Node {
	n := Page(class, children...)
	n.Wrap = true
	return n
}

// View is a generic block container.
func View(class string, children ...*Node) *Node {
	return &Node{Kind: KindView, Class: style.Merge(viewClass, class), Children: children}
}

// Text is a block of inline content.
func Text(class string, children ...*Node) *Node {
	return &Node{Kind: KindText, Class: style.Merge(textClass, class), Children: children}
}

// Link is a hyperlink around inline content.
func Link(href, class string, children ...*Node) *Node {
	return &Node{Kind: KindLink, Class: style.Merge(linkClass, class), Href: href, Children: children}
}

// Image embeds a raster image. On the PDF target src is resolved against
// the renderer's asset directory.
func Image(src, alt, class string) *Node {
	return &Node{Kind: KindImage, Class: style.Merge(imageClass, class), Src: src, Alt: alt}
}

// Svg is a vector container for Path and Circle children.
func Svg(box SvgBox, class string, children ...*Node) *Node {
	return &Node{Kind: KindSvg, Class: style.Merge(class), Box: box, Children: children}
}

// Path is an SVG path.
func Path(d string, shape Shape, class string) *Node {
	return &Node{Kind: KindPath, Class: style.Merge(class), D: d, Shape: shape}
}

// Circle is an SVG circle.
func Circle(cx, cy, r float64, shape Shape, class string) *Node {
	return &Node{Kind: KindCircle, Class: style.Merge(class), CX: cx, CY: cy, R: r, Shape: shape}
}

// String is a text leaf.
func String(s string) *Node {
	return &Node{Kind: KindString, Text: s}
}

// Raw embeds pre-rendered HTML. It is dropped by the PDF target.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// Label is shorthand for a Text holding a single string.
func Label(class, s string) *Node {
	return Text(class, String(s))
}

// Walk visits n and its descendants depth first, stopping early when fn
// returns false.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// PlainText concatenates the String leaves below n.
func PlainText(n *Node) string {
	var out []byte
	Walk(n, func(c *Node) bool {
		if c.Kind == KindString {
			out = append(out, c.Text...)
		}
		return true
	})
	return string(out)
}
