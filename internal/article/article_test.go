package article

import (
	"bytes"
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/editor"
	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/style"
)

const sample = "---\n" +
	"title: Building folio\n" +
	"author: David MacDonald\n" +
	"description: Notes on the site\n" +
	"---\n" +
	"# Ignored heading\n\n" +
	"First paragraph with a [link](https://example.com).\n\n" +
	"```typescript\n" +
	"const answer: number = 42;\n" +
	"```\n\n" +
	"```nolang-xyz\n" +
	"plain <text>\n" +
	"```\n\n" +
	"```\n" +
	"untagged\n" +
	"```\n\n" +
	"- one\n" +
	"- two\n"

func writeArticle(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	ed, ok := editor.New(editor.DefaultStyle)
	require.True(t, ok)
	return NewRenderer(ed, style.NewConverter(12), log.Discard())
}

func render(t *testing.T, body string) *Article {
	t.Helper()
	src, err := Load(writeArticle(t, "article.md", body))
	require.NoError(t, err)
	a, err := newTestRenderer(t).Render(src)
	require.NoError(t, err)
	return a
}

func TestLoad(t *testing.T) {
	path := writeArticle(t, "article.md", "hello")
	src, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), src.Body)
	assert.False(t, src.ModTime.IsZero())
}

func TestLoadRejectsInvalidUTF8(t *testing.T) {
	path := writeArticle(t, "bad.md", string([]byte{0xff, 0xfe, 'h', 'i'}))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidEncoding)
}

func TestRenderFrontMatter(t *testing.T) {
	a := render(t, sample)
	assert.Equal(t, "Building folio", a.Title)
	assert.Equal(t, "David MacDonald", a.Author)
	assert.Equal(t, "Notes on the site", a.Description)
	assert.NotContains(t, a.HTML, "title: Building folio")
}

func TestRenderParagraphPadding(t *testing.T) {
	a := render(t, sample)
	d, err := goquery.NewDocumentFromReader(strings.NewReader(a.HTML))
	require.NoError(t, err)

	p := d.Find("p").First()
	assert.True(t, p.HasClass("py-2"))
	st, _ := p.Attr("style")
	assert.Equal(t, "padding-bottom: 6pt; padding-top: 6pt", st)
	href, _ := p.Find("a").Attr("href")
	assert.Equal(t, "https://example.com", href)
}

func TestRenderCodeBlocks(t *testing.T) {
	a := render(t, sample)
	d, err := goquery.NewDocumentFromReader(strings.NewReader(a.HTML))
	require.NoError(t, err)

	editorPane := d.Find("pre.editor")
	require.Equal(t, 1, editorPane.Length(), "known language goes through the editor")
	assert.Equal(t, "const answer: number = 42;", strings.TrimSpace(editorPane.Find("code").Text()))

	fallback := d.Find("code.language-nolang-xyz")
	require.Equal(t, 1, fallback.Length(), "unknown language keeps its class")
	assert.Equal(t, "plain <text>", fallback.Text(), "trailing newline trimmed and content escaped")

	var untagged *goquery.Selection
	d.Find("pre > code").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("class"); !ok {
			untagged = s
		}
	})
	require.NotNil(t, untagged)
	assert.Equal(t, "untagged", untagged.Text())
}

func TestRenderTitleFallbacks(t *testing.T) {
	a := render(t, "intro\n\n# Real Title\n\ntext\n")
	assert.Equal(t, "Real Title", a.Title)

	src, err := Load(writeArticle(t, "my-notes.md", "just text\n"))
	require.NoError(t, err)
	a, err = newTestRenderer(t).Render(src)
	require.NoError(t, err)
	assert.Equal(t, "my-notes", a.Title)
}

func TestArticleHash(t *testing.T) {
	a := render(t, sample)
	sum := blake3.Sum256([]byte(sample))
	assert.Equal(t, hex.EncodeToString(sum[:]), a.Hash)
	assert.Equal(t, `"`+a.Hash+`"`, a.ETag())

	b := render(t, sample+"\nmore\n")
	assert.NotEqual(t, a.Hash, b.Hash)
}

func TestArticleDocument(t *testing.T) {
	a := render(t, sample)
	root := a.Document()

	require.Equal(t, doc.KindDocument, root.Kind)
	assert.Equal(t, "Building folio", root.Meta.Title)
	require.Len(t, root.Children, 1)
	assert.True(t, root.Children[0].Wrap)

	text := doc.PlainText(root)
	assert.Contains(t, text, "First paragraph with a link.")
	assert.Contains(t, text, "const answer: number = 42;")
	assert.Contains(t, text, "two")

	var links []string
	doc.Walk(root, func(n *doc.Node) bool {
		if n.Kind == doc.KindLink {
			links = append(links, n.Href)
		}
		return true
	})
	assert.Equal(t, []string{"https://example.com"}, links)

	var buf bytes.Buffer
	r := doc.NewRenderer(doc.Options{}, log.Discard())
	require.NoError(t, r.Render(doc.WithTarget(context.Background(), doc.PDF), &buf, root))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestArticlePage(t *testing.T) {
	a := render(t, sample)

	var buf bytes.Buffer
	r := doc.NewRenderer(doc.Options{}, log.Discard())
	require.NoError(t, r.Render(context.Background(), &buf, a.Page()))

	d, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Building folio", d.Find("title").Text())
	assert.Equal(t, 1, d.Find("main pre.editor").Length())
}
