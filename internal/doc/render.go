package doc

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmacdonald/folio/internal/style"
)

// Options configures a Renderer.
type Options struct {
	// PtPerRem is the point size of one rem. Zero uses style.DefaultPtPerRem.
	PtPerRem float64
	// AssetDir is the directory local image sources resolve against on the
	// PDF target.
	AssetDir string
}

// Renderer renders node trees to the target carried by the context.
type Renderer struct {
	conv     *style.Converter
	assetDir string
	logger   *slog.Logger
}

// NewRenderer creates a renderer.
func NewRenderer(opts Options, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		conv:     style.NewConverter(opts.PtPerRem),
		assetDir: opts.AssetDir,
		logger:   logger,
	}
}

// Style returns the resolved style of n. Both targets read styles through
// this method.
func (r *Renderer) Style(n *Node) style.Style {
	return r.conv.Convert(n.Class)
}

// Converter exposes the class converter used by this renderer.
func (r *Renderer) Converter() *style.Converter {
	return r.conv
}

// Render writes root to w using the target from ctx.
func (r *Renderer) Render(ctx context.Context, w io.Writer, root *Node) error {
	if root == nil {
		return fmt.Errorf("render: nil root")
	}
	switch t := TargetFrom(ctx); t {
	case Markup:
		return r.renderMarkup(w, root)
	case PDF:
		return r.renderPDF(ctx, w, root)
	default:
		return fmt.Errorf("render: %w: %s", ErrUnknownTarget, t)
	}
}
