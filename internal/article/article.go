// Package article loads the markdown article and renders it to HTML and to
// document primitives.
package article

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	"github.com/zeebo/blake3"

	"github.com/dmacdonald/folio/internal/doc"
)

// ErrInvalidEncoding is returned when the article is not valid UTF-8.
var ErrInvalidEncoding = errors.New("article is not valid UTF-8")

// DefaultPath is the article location relative to the working directory.
const DefaultPath = "articles/article.md"

// Source is the raw article file.
type Source struct {
	Path    string
	Body    []byte
	ModTime time.Time
}

// Load reads the article at path.
func Load(path string) (*Source, error) {
	if path == "" {
		path = DefaultPath
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	if !utf8.Valid(body) {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidEncoding)
	}

	src := &Source{Path: path, Body: body}
	if info, err := os.Stat(path); err == nil {
		src.ModTime = info.ModTime()
	}
	return src, nil
}

// Hash returns the blake3 digest of the source as hex.
func (s *Source) Hash() string {
	sum := blake3.Sum256(s.Body)
	return hex.EncodeToString(sum[:])
}

// Article is a rendered article.
type Article struct {
	Title       string
	Author      string
	Description string
	HTML        string
	Hash        string
	ModTime     time.Time

	root   ast.Node
	source []byte
}

// ETag is the strong entity tag for the article body.
func (a *Article) ETag() string {
	return `"` + a.Hash + `"`
}

// Meta returns the document metadata for the article.
func (a *Article) Meta() doc.Meta {
	return doc.Meta{
		Title:        a.Title,
		Author:       a.Author,
		Subject:      a.Description,
		Description:  a.Description,
		Creator:      "folio",
		CreationDate: a.ModTime,
	}
}

// Page wraps the rendered HTML body for the markup target.
func (a *Article) Page() *doc.Node {
	return doc.Document(a.Meta(), "", doc.Raw(a.HTML))
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
