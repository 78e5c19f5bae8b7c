package doc

import (
	"strings"
)

// ascent approximates the baseline offset of the core fonts as a fraction
// of the font size.
const ascent = 0.78

type run struct {
	text  string
	props textProps
	href  string
}

type word struct {
	text      string
	props     textProps
	href      string
	width     float64
	space     float64
	lineBreak bool
}

type line struct {
	words  []word
	width  float64
	height float64
}

// collectRuns flattens the inline content below n into styled runs.
func (p *pdfPainter) collectRuns(n *Node, props textProps, href string, out []run) []run {
	for _, c := range n.Children {
		switch c.Kind {
		case KindString:
			out = append(out, run{text: c.Text, props: props, href: href})
		case KindText, KindLink, KindView:
			childHref := href
			if c.Kind == KindLink {
				childHref = c.Href
			}
			out = p.collectRuns(c, p.textProps(props, p.r.Style(c)), childHref, out)
		}
	}
	return out
}

func (p *pdfPainter) setFont(t textProps) {
	p.pdf.SetFont(t.family, t.fontStyle(), t.size)
}

// layoutRuns breaks runs into lines no wider than w and returns the y
// coordinate below the last line.
func (p *pdfPainter) layoutRuns(runs []run, block textProps, x, y, w float64, draw bool) float64 {
	lines := p.breakLines(p.words(runs), block, w)

	for _, ln := range lines {
		if draw && p.frame.wrap && y > p.frame.top && y+ln.height > p.frame.bottom {
			p.newPage()
			y = p.frame.top
		}

		cx := x
		switch block.align {
		case "center":
			cx += (w - ln.width) / 2
		case "right":
			cx += w - ln.width
		}

		for _, wd := range ln.words {
			cx += wd.space
			if draw {
				p.setFont(wd.props)
				c := wd.props.color
				p.pdf.SetTextColor(c.r, c.g, c.b)
				baseline := y + (ln.height-wd.props.size)/2 + wd.props.size*ascent
				p.pdf.Text(cx, baseline, wd.text)
				if wd.href != "" {
					p.pdf.LinkString(cx, y, wd.width, ln.height, wd.href)
				}
			}
			cx += wd.width
		}
		y += ln.height
	}
	return y
}

// words splits runs into measured words. Explicit newlines become break
// markers and spaces between runs are kept only where the source had them.
func (p *pdfPainter) words(runs []run) []word {
	var out []word
	trailing := false
	for _, r := range runs {
		p.setFont(r.props)
		space := p.pdf.GetStringWidth(" ")
		leading := len(r.text) > 0 && isBlank(r.text[0])

		for i, segment := range strings.Split(r.text, "\n") {
			if i > 0 {
				out = append(out, word{props: r.props, lineBreak: true})
			}
			for j, tok := range splitWords(segment) {
				text := p.tr(tok)
				wd := word{
					text:  text,
					props: r.props,
					href:  r.href,
					width: p.pdf.GetStringWidth(text),
					space: space,
				}
				if i == 0 && j == 0 && !leading && !trailing {
					wd.space = 0
				}
				out = append(out, wd)
			}
		}
		trailing = len(r.text) > 0 && isBlank(r.text[len(r.text)-1])
	}
	return out
}

func (p *pdfPainter) breakLines(words []word, block textProps, w float64) []line {
	var lines []line
	cur := line{}
	flush := func() {
		if cur.height == 0 {
			cur.height = block.size * block.lineHeight
		}
		lines = append(lines, cur)
		cur = line{}
	}

	for _, wd := range words {
		if wd.lineBreak {
			flush()
			continue
		}
		if len(cur.words) == 0 {
			wd.space = 0
		} else if cur.width+wd.space+wd.width > w {
			flush()
			wd.space = 0
		}
		cur.words = append(cur.words, wd)
		cur.width += wd.space + wd.width
		if h := wd.props.size * wd.props.lineHeight; h > cur.height {
			cur.height = h
		}
	}
	if len(cur.words) > 0 {
		flush()
	}
	return lines
}

// splitWords splits on ASCII spaces and tabs only, so non-breaking spaces
// survive as part of a word.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}
