// Package site composes the landing page.
package site

import (
	"github.com/dmacdonald/folio/internal/config"
	"github.com/dmacdonald/folio/internal/doc"
)

const (
	headerClass  = "flex-row items-center justify-between py-4 border-b border-slate-300"
	sectionClass = "py-4 gap-2"
	headingClass = "text-xl font-bold text-slate-800"
	footerClass  = "py-4 border-t border-slate-300 text-xs text-slate-500"
	markPath     = "M4 20 L12 4 L20 20 Z"
)

var mark = doc.Shape{Fill: "none", Stroke: "#115e59", StrokeWidth: 2}

// Page builds the landing page for cfg. Empty fields fall back to the
// built-in defaults.
func Page(cfg config.SiteConfig) *doc.Node {
	cfg = withDefaults(cfg)

	return doc.Document(doc.Meta{
		Title:       cfg.Owner,
		Author:      cfg.Owner,
		Description: cfg.Summary,
		Creator:     "folio",
	}, "bg-white",
		doc.Page("p-12 bg-white",
			header(cfg),
			summary(cfg),
			projects(cfg.Projects),
			doc.View(footerClass, doc.Text("", doc.String(cfg.Footer))),
		),
	)
}

func withDefaults(cfg config.SiteConfig) config.SiteConfig {
	d := config.Defaults().Site
	if cfg.Owner == "" {
		cfg.Owner = d.Owner
	}
	if cfg.Summary == "" {
		cfg.Summary = d.Summary
	}
	if cfg.Footer == "" {
		cfg.Footer = d.Footer
	}
	if len(cfg.Nav) == 0 {
		cfg.Nav = d.Nav
	}
	return cfg
}

func header(cfg config.SiteConfig) *doc.Node {
	brand := doc.View("flex-row items-center gap-2",
		doc.Svg(doc.SvgBox{Width: 24, Height: 24, ViewBox: "0 0 24 24"}, "",
			doc.Path(markPath, mark, ""),
			doc.Circle(12, 15, 2, doc.Shape{Fill: "#115e59"}, ""),
		),
		doc.Link("/", "text-lg font-bold", doc.String(cfg.Owner)),
	)

	var items []*doc.Node
	for _, l := range cfg.Nav {
		items = append(items, doc.Link(l.Href, "px-2", doc.String(l.Label)))
	}
	return doc.View(headerClass, brand, doc.View("flex-row gap-2", items...))
}

func summary(cfg config.SiteConfig) *doc.Node {
	var children []*doc.Node
	if cfg.Avatar != "" {
		children = append(children, doc.Image(cfg.Avatar, cfg.Owner, "w-24 h-24 rounded-full"))
	}
	children = append(children,
		doc.Label(headingClass, "Summary"),
		doc.Text("text-base", doc.String(cfg.Summary)),
	)
	return doc.View(sectionClass, children...)
}

func projects(list []config.Project) *doc.Node {
	children := []*doc.Node{doc.Label(headingClass, "Projects")}
	for _, p := range list {
		var name *doc.Node
		if p.Href != "" {
			name = doc.Link(p.Href, "font-semibold", doc.String(p.Name))
		} else {
			name = doc.Label("font-semibold", p.Name)
		}
		item := doc.View("py-1", name)
		if p.Description != "" {
			item.Children = append(item.Children, doc.Text("text-slate-600", doc.String(p.Description)))
		}
		children = append(children, item)
	}
	return doc.View(sectionClass, children...)
}
