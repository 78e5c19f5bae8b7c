package doc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/net/html"

	"github.com/dmacdonald/folio/internal/style"
)

// A4 in points.
const (
	a4Width  = 595.28
	a4Height = 841.89
)

const (
	defaultLineHeight = 1.2
	producer          = "folio"
)

type rgb struct{ r, g, b int }

// textProps are the inherited text properties in effect for a node.
type textProps struct {
	family     string
	bold       bool
	italic     bool
	underline  bool
	size       float64
	color      rgb
	lineHeight float64
	align      string
}

func (t textProps) fontStyle() string {
	var s string
	if t.bold {
		s += "B"
	}
	if t.italic {
		s += "I"
	}
	if t.underline {
		s += "U"
	}
	return s
}

type pageFrame struct {
	size   fpdf.SizeType
	style  style.Style
	top    float64
	bottom float64
	wrap   bool
}

type imageEntry struct {
	info *fpdf.ImageInfoType
	typ  string
}

type pdfPainter struct {
	r      *Renderer
	pdf    *fpdf.Fpdf
	tr     func(string) string
	frame  pageFrame
	images map[string]imageEntry
}

type edgeBox struct{ top, right, bottom, left float64 }

func (r *Renderer) renderPDF(ctx context.Context, w io.Writer, root *Node) error {
	root = asDocument(root)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: a4Width, Ht: a4Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)

	p := &pdfPainter{
		r:      r,
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]imageEntry),
	}
	p.meta(root.Meta)

	base := textProps{
		family:     "Helvetica",
		size:       r.conv.PtPerRem,
		lineHeight: defaultLineHeight,
		align:      "left",
	}
	inherited := p.textProps(base, r.Style(root))

	for _, page := range root.Children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if page.Kind != KindPage {
			page = Page("", page)
		}
		p.paintPage(page, inherited)
	}
	if pdf.PageNo() == 0 {
		pdf.AddPage()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func asDocument(n *Node) *Node {
	switch n.Kind {
	case KindDocument:
		return n
	case KindPage:
		return Document(Meta{}, "", n)
	default:
		return Document(Meta{}, "", Page("", n))
	}
}

func (p *pdfPainter) meta(m Meta) {
	if m.Title != "" {
		p.pdf.SetTitle(m.Title, true)
	}
	if m.Author != "" {
		p.pdf.SetAuthor(m.Author, true)
	}
	if m.Subject != "" {
		p.pdf.SetSubject(m.Subject, true)
	}
	if m.Keywords != "" {
		p.pdf.SetKeywords(m.Keywords, true)
	}
	if m.Creator != "" {
		p.pdf.SetCreator(m.Creator, true)
	}
	p.pdf.SetProducer(producer, true)
	if !m.CreationDate.IsZero() {
		p.pdf.SetCreationDate(m.CreationDate)
		p.pdf.SetModificationDate(m.CreationDate)
	}
}

func (p *pdfPainter) paintPage(page *Node, inherited textProps) {
	st := p.r.Style(page)
	size := fpdf.SizeType{Wd: a4Width, Ht: a4Height}
	if v, ok := style.ParseLength(st["width"], a4Width); ok && v > 0 {
		size.Wd = v
	}
	if v, ok := style.ParseLength(st["height"], a4Height); ok && v > 0 {
		size.Ht = v
	}

	pad := edges(st, "padding", size.Wd)
	p.frame = pageFrame{
		size:   size,
		style:  st,
		top:    pad.top,
		bottom: size.Ht - pad.bottom,
		wrap:   page.Wrap,
	}
	p.newPage()

	props := p.textProps(inherited, st)
	p.layoutChildren(page, st, props, pad.left, pad.top, size.Wd-pad.left-pad.right, true)
}

// newPage starts a page in the current frame and paints its background.
func (p *pdfPainter) newPage() {
	p.pdf.AddPageFormat("P", p.frame.size)
	if c, ok := parseColor(p.frame.style["backgroundColor"]); ok {
		p.pdf.SetFillColor(c.r, c.g, c.b)
		p.pdf.Rect(0, 0, p.frame.size.Wd, p.frame.size.Ht, "F")
	}
}

// layoutBlock lays n out at (x, y) within width w and returns the y
// coordinate below it. Nothing is painted unless draw is set.
func (p *pdfPainter) layoutBlock(n *Node, parent textProps, x, y, w float64, draw bool) float64 {
	if n.Kind == KindRaw || n.Kind == KindPath || n.Kind == KindCircle {
		return y
	}

	st := p.r.Style(n)
	props := p.textProps(parent, st)
	margin := edges(st, "margin", w)
	pad := edges(st, "padding", w)

	bw := w - margin.left - margin.right
	if v, ok := style.ParseLength(st["width"], w); ok && v > 0 {
		bw = v
	}

	if draw {
		decorated := hasDecoration(st)
		var measured float64
		if decorated || p.frame.wrap {
			measured = p.layoutBlock(n, parent, x, y, w, false) - y
		}
		avail := p.frame.bottom - p.frame.top
		if p.frame.wrap && y > p.frame.top && y+measured > p.frame.bottom && measured <= avail {
			p.newPage()
			y = p.frame.top
		}
		if decorated {
			p.decorate(st, x+margin.left, y+margin.top, bw, measured-margin.top-margin.bottom)
		}
	}

	bx := x + margin.left
	by := y + margin.top
	innerX := bx + pad.left
	innerY := by + pad.top
	innerW := bw - pad.left - pad.right

	var end float64
	switch n.Kind {
	case KindText, KindLink:
		href := ""
		if n.Kind == KindLink {
			href = n.Href
		}
		end = p.layoutRuns(p.collectRuns(n, props, href, nil), props, innerX, innerY, innerW, draw)
	case KindString:
		end = p.layoutRuns([]run{{text: n.Text, props: props}}, props, innerX, innerY, innerW, draw)
	case KindImage:
		end = p.layoutImage(n, st, innerX, innerY, innerW, draw)
	case KindSvg:
		end = p.layoutSvg(n, st, props, innerX, innerY, innerW, draw)
	default:
		end = p.layoutChildren(n, st, props, innerX, innerY, innerW, draw)
	}

	bottom := end + pad.bottom
	for _, key := range []string{"height", "minHeight"} {
		if v, ok := style.ParseLength(st[key], 0); ok && by+v > bottom {
			bottom = by + v
		}
	}
	return bottom + margin.bottom
}

func (p *pdfPainter) layoutChildren(n *Node, st style.Style, props textProps, x, y, w float64, draw bool) float64 {
	switch st["flexDirection"] {
	case "row", "row-reverse":
		return p.layoutRow(n, st, props, x, y, w, draw)
	}

	gap := firstLength(st, w, "rowGap", "gap")
	for i, c := range n.Children {
		if i > 0 {
			y += gap
		}
		y = p.layoutBlock(c, props, x, y, w, draw)
	}
	return y
}

// layoutRow places children side by side. Children with an explicit width
// keep it; the rest share the remaining width evenly.
func (p *pdfPainter) layoutRow(n *Node, st style.Style, props textProps, x, y, w float64, draw bool) float64 {
	kids := n.Children
	if len(kids) == 0 {
		return y
	}
	if st["flexDirection"] == "row-reverse" {
		kids = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			kids[len(kids)-1-i] = c
		}
	}

	gap := firstLength(st, w, "columnGap", "gap")
	widths := make([]float64, len(kids))
	remaining := w - gap*float64(len(kids)-1)
	flexible := 0
	for i, c := range kids {
		if fixed, ok := p.fixedWidth(c, w); ok {
			widths[i] = fixed
			remaining -= fixed
			continue
		}
		flexible++
	}
	if flexible > 0 {
		share := remaining / float64(flexible)
		if share < 0 {
			share = 0
		}
		for i := range widths {
			if widths[i] == 0 {
				widths[i] = share
			}
		}
	}

	// Rows move between pages as a unit.
	wrap := p.frame.wrap
	p.frame.wrap = false
	defer func() { p.frame.wrap = wrap }()

	bottom := y
	cx := x
	for i, c := range kids {
		if end := p.layoutBlock(c, props, cx, y, widths[i], draw); end > bottom {
			bottom = end
		}
		cx += widths[i] + gap
	}
	return bottom
}

func (p *pdfPainter) fixedWidth(n *Node, parent float64) (float64, bool) {
	if v, ok := style.ParseLength(p.r.Style(n)["width"], parent); ok && v > 0 {
		return v, true
	}
	if n.Kind == KindSvg && n.Box.Width > 0 {
		return n.Box.Width, true
	}
	return 0, false
}

func hasDecoration(st style.Style) bool {
	if _, ok := parseColor(st["backgroundColor"]); ok {
		return true
	}
	_, ok := style.ParseLength(st["borderWidth"], 0)
	return ok
}

func (p *pdfPainter) decorate(st style.Style, x, y, w, h float64) {
	if h <= 0 || w <= 0 {
		return
	}
	radius, _ := style.ParseLength(st["borderRadius"], 0)
	if radius > h/2 {
		radius = h / 2
	}

	mode := ""
	if c, ok := parseColor(st["backgroundColor"]); ok {
		p.pdf.SetFillColor(c.r, c.g, c.b)
		mode += "F"
	}
	if bw, ok := style.ParseLength(st["borderWidth"], 0); ok && bw > 0 {
		c, ok := parseColor(st["borderColor"])
		if !ok {
			c = rgb{229, 231, 235}
		}
		p.pdf.SetDrawColor(c.r, c.g, c.b)
		p.pdf.SetLineWidth(bw)
		mode += "D"
	}
	if mode == "" {
		return
	}
	if radius > 0 {
		p.pdf.RoundedRect(x, y, w, h, radius, "1234", mode)
		return
	}
	p.pdf.Rect(x, y, w, h, mode)
}

func (p *pdfPainter) textProps(parent textProps, st style.Style) textProps {
	out := parent
	if v, ok := st["fontFamily"]; ok {
		out.family = pdfFamily(v)
	}
	if v, ok := st["fontWeight"]; ok {
		if weight, err := strconv.Atoi(v); err == nil {
			out.bold = weight >= 600
		}
	}
	if v, ok := st["fontStyle"]; ok {
		out.italic = v == "italic"
	}
	if v, ok := st["textDecoration"]; ok {
		out.underline = v == "underline"
	}
	if v, ok := st["fontSize"]; ok {
		if size, ok := style.ParseLength(v, parent.size); ok && size > 0 {
			out.size = size
		}
	}
	if c, ok := parseColor(st["color"]); ok {
		out.color = c
	}
	if v, ok := st["lineHeight"]; ok {
		if lh, err := strconv.ParseFloat(v, 64); err == nil && lh > 0 {
			out.lineHeight = lh
		}
	}
	if v, ok := st["textAlign"]; ok {
		out.align = v
	}
	return out
}

// pdfFamily maps a CSS family onto one of the PDF core fonts.
func pdfFamily(v string) string {
	lower := strings.ToLower(v)
	switch {
	case strings.Contains(lower, "courier"), strings.Contains(lower, "mono"), strings.Contains(lower, "fira"):
		return "Courier"
	case strings.Contains(lower, "times"), strings.Contains(lower, "serif") && !strings.Contains(lower, "sans"):
		return "Times"
	default:
		return "Helvetica"
	}
}

func (p *pdfPainter) layoutImage(n *Node, st style.Style, x, y, w float64, draw bool) float64 {
	entry, ok := p.image(n.Src)
	if !ok {
		return y
	}

	iw, ih := entry.info.Extent()
	if iw <= 0 || ih <= 0 {
		return y
	}
	ratio := ih / iw

	_, hasWidth := style.ParseLength(st["width"], w)
	height, hasHeight := style.ParseLength(st["height"], 0)
	switch {
	case hasWidth:
		iw = w
		ih = iw * ratio
	case hasHeight && height > 0:
		ih = height
		iw = ih / ratio
	}
	if iw > w {
		iw = w
		ih = iw * ratio
	}

	if draw {
		p.pdf.ImageOptions(n.Src, x, y, iw, ih, false, fpdf.ImageOptions{ImageType: entry.typ}, 0, "")
	}
	return y + ih
}

// image registers src once. Failures are logged and the image is skipped.
func (p *pdfPainter) image(src string) (imageEntry, bool) {
	if e, ok := p.images[src]; ok {
		return e, e.info != nil
	}

	entry := imageEntry{}
	path, typ, err := p.r.resolveImage(src)
	if err == nil {
		entry.typ = typ
		entry.info, err = p.register(src, path, typ)
	}
	if err != nil {
		p.r.logger.Warn("skipping image", "src", src, "error", err)
	}
	p.images[src] = entry
	return entry, entry.info != nil
}

func (p *pdfPainter) register(name, path, typ string) (*fpdf.ImageInfoType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info := p.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: typ, ReadDpi: true}, f)
	if !p.pdf.Ok() {
		err := p.pdf.Error()
		p.pdf.ClearError()
		return nil, err
	}
	return info, nil
}

func (r *Renderer) resolveImage(src string) (string, string, error) {
	if src == "" {
		return "", "", errors.New("empty image source")
	}
	lower := strings.ToLower(src)
	if strings.Contains(lower, "://") || strings.HasPrefix(lower, "data:") {
		return "", "", errors.New("only local image sources are supported")
	}

	var typ string
	switch strings.ToLower(filepath.Ext(src)) {
	case ".png":
		typ = "PNG"
	case ".jpg", ".jpeg":
		typ = "JPG"
	case ".gif":
		typ = "GIF"
	default:
		return "", "", fmt.Errorf("unsupported image type %q", filepath.Ext(src))
	}

	clean := filepath.Clean("/" + filepath.FromSlash(src))
	if r.assetDir == "" {
		return strings.TrimPrefix(clean, string(filepath.Separator)), typ, nil
	}
	return filepath.Join(r.assetDir, clean), typ, nil
}

func (p *pdfPainter) layoutSvg(n *Node, st style.Style, props textProps, x, y, w float64, draw bool) float64 {
	vb, ok := parseViewBox(n.Box.ViewBox)
	width, height := n.Box.Width, n.Box.Height
	if !ok {
		vb = viewBox{width: width, height: height}
	}
	if v, ok := style.ParseLength(st["width"], w); ok && v > 0 {
		width = v
	}
	if v, ok := style.ParseLength(st["height"], 0); ok && v > 0 {
		height = v
	}
	if width <= 0 {
		width = vb.width
	}
	if height <= 0 && vb.width > 0 {
		height = width * vb.height / vb.width
	}
	if width > w && width > 0 {
		height = height * w / width
		width = w
	}
	if width <= 0 || height <= 0 || vb.width <= 0 || vb.height <= 0 {
		return y
	}

	if draw {
		scale := min(width/vb.width, height/vb.height)
		ox := x - vb.minX*scale
		oy := y - vb.minY*scale
		for _, c := range n.Children {
			switch c.Kind {
			case KindPath:
				p.drawPath(c, props, ox, oy, scale)
			case KindCircle:
				p.drawCircle(c, props, ox, oy, scale)
			}
		}
	}
	return y + height
}

func (p *pdfPainter) drawPath(n *Node, props textProps, ox, oy, scale float64) {
	src := `<svg width="1" height="1"><path d="` + html.EscapeString(n.D) + `"/></svg>`
	sig, err := fpdf.SVGBasicParse([]byte(src))
	if err != nil {
		p.r.logger.Warn("skipping svg path", "error", err)
		return
	}

	c, ok := parseColor(n.Shape.Stroke)
	if !ok {
		c, ok = parseColor(n.Shape.Fill)
	}
	if !ok {
		if n.Shape.Stroke == "none" && n.Shape.Fill == "none" {
			return
		}
		c = p.shapeColor(n, props)
	}

	lw := n.Shape.StrokeWidth
	if lw <= 0 {
		lw = 1
	}
	p.pdf.SetDrawColor(c.r, c.g, c.b)
	p.pdf.SetLineWidth(lw * scale)
	p.pdf.SetLineJoinStyle("round")
	p.pdf.SetLineCapStyle("round")
	p.pdf.SetXY(ox, oy)
	p.pdf.SVGBasicWrite(&sig, scale)
}

func (p *pdfPainter) drawCircle(n *Node, props textProps, ox, oy, scale float64) {
	mode := ""
	if c, ok := parseColor(n.Shape.Fill); ok {
		p.pdf.SetFillColor(c.r, c.g, c.b)
		mode += "F"
	}
	if c, ok := parseColor(n.Shape.Stroke); ok {
		p.pdf.SetDrawColor(c.r, c.g, c.b)
		lw := n.Shape.StrokeWidth
		if lw <= 0 {
			lw = 1
		}
		p.pdf.SetLineWidth(lw * scale)
		mode += "D"
	}
	if mode == "" {
		if n.Shape.Fill == "none" {
			return
		}
		c := p.shapeColor(n, props)
		p.pdf.SetFillColor(c.r, c.g, c.b)
		mode = "F"
	}
	p.pdf.Circle(ox+n.CX*scale, oy+n.CY*scale, n.R*scale, mode)
}

// shapeColor falls back to the node's text colour, as currentColor would.
func (p *pdfPainter) shapeColor(n *Node, props textProps) rgb {
	if c, ok := parseColor(p.r.Style(n)["color"]); ok {
		return c
	}
	return props.color
}

type viewBox struct{ minX, minY, width, height float64 }

func parseViewBox(s string) (viewBox, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	if len(fields) != 4 {
		return viewBox{}, false
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return viewBox{}, false
		}
		vals[i] = v
	}
	return viewBox{vals[0], vals[1], vals[2], vals[3]}, true
}

func edges(st style.Style, prop string, ref float64) edgeBox {
	side := func(name string) float64 {
		v, _ := style.ParseLength(st[prop+name], ref)
		return v
	}
	return edgeBox{
		top:    side("Top"),
		right:  side("Right"),
		bottom: side("Bottom"),
		left:   side("Left"),
	}
}

func firstLength(st style.Style, ref float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := style.ParseLength(st[k], ref); ok {
			return v
		}
	}
	return 0
}

func parseColor(v string) (rgb, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return rgb{}, false
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, true
}
