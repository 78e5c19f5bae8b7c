package doc

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTarget is returned for render targets other than markup and pdf.
var ErrUnknownTarget = errors.New("unknown render target")

// Target selects how a tree is rendered.
type Target int

const (
	// Markup renders HTML elements.
	Markup Target = iota
	// PDF renders a paginated PDF document.
	PDF
)

func (t Target) String() string {
	switch t {
	case Markup:
		return "html"
	case PDF:
		return "pdf"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// ContentType is the HTTP media type produced by the target.
func (t Target) ContentType() string {
	if t == PDF {
		return "application/pdf"
	}
	return "text/html; charset=utf-8"
}

// ParseTarget maps a format name to a Target. The empty string is Markup.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html":
		return Markup, nil
	case "pdf":
		return PDF, nil
	default:
		return Markup, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
}

type targetKey struct{}

// WithTarget returns a context that renders to t.
func WithTarget(ctx context.Context, t Target) context.Context {
	return context.WithValue(ctx, targetKey{}, t)
}

// TargetFrom returns the target carried by ctx, defaulting to Markup.
func TargetFrom(ctx context.Context) Target {
	if t, ok := ctx.Value(targetKey{}).(Target); ok {
		return t
	}
	return Markup
}
