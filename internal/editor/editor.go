// Package editor renders read-only, syntax-highlighted code panes.
package editor

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownLanguage is returned when no lexer matches the language tag.
var ErrUnknownLanguage = errors.New("unknown language")

// DefaultStyle is the highlight style used when none is configured.
const DefaultStyle = "monokai"

// Pane presentation.
const (
	Padding    = 10
	FontSize   = 12
	FontFamily = "'Fira code', 'Fira Mono', monospace"
	TabWidth   = 2
)

// Editor highlights code with a fixed style.
type Editor struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New returns an editor using the named chroma style. Unknown names fall
// back to DefaultStyle; the boolean reports whether the name was found.
func New(styleName string) (*Editor, bool) {
	if styleName == "" {
		styleName = DefaultStyle
	}
	st, ok := styles.Registry[strings.ToLower(styleName)]
	if !ok {
		st = styles.Get(DefaultStyle)
	}

	return &Editor{
		style: st,
		formatter: chromahtml.New(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(TabWidth),
			chromahtml.WithPreWrapper(paneWrapper{}),
		),
	}, ok
}

// StyleName returns the name of the active style.
func (e *Editor) StyleName() string {
	return e.style.Name
}

// Supports reports whether lang has a lexer.
func (e *Editor) Supports(lang string) bool {
	return lang != "" && lexers.Get(lang) != nil
}

// Render writes code highlighted as lang to w.
func (e *Editor) Render(w io.Writer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lang == "" || lexer == nil {
		return fmt.Errorf("%w: %q", ErrUnknownLanguage, lang)
	}

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return fmt.Errorf("tokenise %s: %w", lang, err)
	}
	if err := e.formatter.Format(w, e.style, iterator); err != nil {
		return fmt.Errorf("format %s: %w", lang, err)
	}
	return nil
}

// paneWrapper adds the pane padding and font to chroma's pre element.
type paneWrapper struct{}

func (paneWrapper) Start(code bool, styleAttr string) string {
	css := strings.TrimSuffix(strings.TrimPrefix(styleAttr, ` style="`), `"`)
	if css != "" && !strings.HasSuffix(css, ";") {
		css += ";"
	}
	css += fmt.Sprintf("padding:%dpx;font-family:%s;font-size:%dpx;", Padding, FontFamily, FontSize)

	out := fmt.Sprintf(`<pre class="editor" tabindex="0" style="%s">`, css)
	if code {
		out += "<code>"
	}
	return out
}

func (paneWrapper) End(code bool) string {
	if code {
		return "</code></pre>"
	}
	return "</pre>"
}
