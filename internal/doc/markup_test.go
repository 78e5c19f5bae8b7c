package doc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/style"
)

func newTestRenderer() *Renderer {
	return NewRenderer(Options{PtPerRem: 12}, log.Discard())
}

func renderMarkup(t *testing.T, root *Node) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, newTestRenderer().Render(context.Background(), &buf, root))
	d, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return d
}

func TestConstructorsMergeDefaults(t *testing.T) {
	assert.Equal(t, "font-outfit font-normal relative text-lg", Text("text-lg").Class)
	assert.Equal(t, "font-outfit font-normal text-teal-800 relative text-sm underline", Link("/x", "underline").Class)
	assert.Equal(t, "relative left-0 right-0 flex flex-row", View("flex-row").Class)
	assert.Equal(t, "relative left-0 right-0 flex min-h-full flex-col text-base p-8", Document(Meta{}, "p-8").Class)
	assert.True(t, WrapPage("").Wrap)
	assert.False(t, Page("").Wrap)
}

func TestRenderMarkupDocument(t *testing.T) {
	root := Document(Meta{Title: "Hello & welcome", Description: "about"}, "",
		Page("",
			View("gap-2",
				Label("text-lg", "Heading <b>"),
				Link("/projects", "", String("Projects")),
				Image("/avatar.png", "avatar", ""),
			),
		),
	)
	d := renderMarkup(t, root)

	assert.Equal(t, "Hello & welcome", d.Find("head title").Text())
	desc, _ := d.Find(`meta[name="description"]`).Attr("content")
	assert.Equal(t, "about", desc)

	main := d.Find("body > main")
	require.Equal(t, 1, main.Length())
	assert.Equal(t, 1, main.Find("section > div").Length())

	heading := main.Find("section > div > div").First()
	assert.Equal(t, "Heading <b>", heading.Text())
	assert.Equal(t, 0, heading.Find("b").Length(), "text must be escaped")

	href, _ := main.Find("a").Attr("href")
	assert.Equal(t, "/projects", href)
	src, _ := main.Find("img").Attr("src")
	assert.Equal(t, "/avatar.png", src)

	sectionStyle, _ := main.Find("section").Attr("style")
	assert.Contains(t, sectionStyle, "height: 297mm")
	assert.Contains(t, sectionStyle, "background-color: #f1f5f9")
}

func TestRenderMarkupFragment(t *testing.T) {
	var buf bytes.Buffer
	err := newTestRenderer().Render(context.Background(), &buf, View("", Label("", "hi")))
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<div "), out)
	assert.NotContains(t, out, "<html")
}

func TestRenderMarkupSvg(t *testing.T) {
	root := View("",
		Svg(SvgBox{Width: 24, Height: 24, ViewBox: "0 0 24 24"}, "",
			Path("M4 4 L20 20", Shape{Stroke: "#115e59", StrokeWidth: 2}, ""),
			Circle(12, 12, 3, Shape{Fill: "#115e59"}, ""),
		),
	)
	d := renderMarkup(t, root)

	path := d.Find("svg path")
	require.Equal(t, 1, path.Length())
	join, _ := path.Attr("stroke-linejoin")
	assert.Equal(t, "round", join)
	pathStyle, _ := path.Attr("style")
	assert.Equal(t, "stroke-linejoin: round", pathStyle)

	circle := d.Find("svg circle")
	r, _ := circle.Attr("r")
	assert.Equal(t, "3", r)
	fill, _ := circle.Attr("fill")
	assert.Equal(t, "#115e59", fill)
}

func TestRenderMarkupRaw(t *testing.T) {
	d := renderMarkup(t, View("", Raw(`<p class="py-2">one</p><pre>two</pre>`)))

	assert.Equal(t, "one", d.Find("div > p.py-2").Text())
	assert.Equal(t, "two", d.Find("div > pre").Text())
}

func TestTextStyleMatchesAcrossTargets(t *testing.T) {
	r := newTestRenderer()
	base := textProps{family: "Helvetica", size: r.conv.PtPerRem, align: "left"}
	tests := []struct {
		class  string
		size   float64
		color  rgb
		bold   bool
		italic bool
	}{
		{class: "", size: 10.5},
		{class: "text-lg text-teal-800", size: 13.5, color: rgb{0x11, 0x5e, 0x59}},
		{class: "font-bold py-2", size: 10.5, bold: true},
		{class: "text-[9pt] italic", size: 9, italic: true},
	}

	for _, tt := range tests {
		n := Text(tt.class, String("x"))

		var buf bytes.Buffer
		require.NoError(t, r.Render(context.Background(), &buf, n))
		d, err := goquery.NewDocumentFromReader(&buf)
		require.NoError(t, err)
		attr, _ := d.Find("div").First().Attr("style")
		css := parseCSS(attr)

		// Markup side carries the resolved values.
		markupSize, ok := style.ParseLength(css["font-size"], base.size)
		require.True(t, ok, "class %q: font-size %q", tt.class, css["font-size"])
		assert.Equal(t, tt.size, markupSize, "class %q", tt.class)
		markupColor, _ := parseColor(css["color"])
		assert.Equal(t, tt.color, markupColor, "class %q", tt.class)
		assert.Equal(t, tt.italic, css["font-style"] == "italic", "class %q", tt.class)

		// PDF side paints with the same values.
		painted := (&pdfPainter{r: r}).textProps(base, r.Style(n))
		assert.Equal(t, markupSize, painted.size, "class %q", tt.class)
		assert.Equal(t, markupColor, painted.color, "class %q", tt.class)
		assert.Equal(t, tt.bold, painted.bold, "class %q", tt.class)
		assert.Equal(t, tt.italic, painted.italic, "class %q", tt.class)
		assert.Equal(t, pdfFamily(css["font-family"]), painted.family, "class %q", tt.class)

		buf.Reset()
		ctx := WithTarget(context.Background(), PDF)
		require.NoError(t, r.Render(ctx, &buf, n))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	}
}

// parseCSS splits a style attribute into property/value pairs.
func parseCSS(attr string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(attr, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
