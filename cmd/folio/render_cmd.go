package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmacdonald/folio/internal/article"
	"github.com/dmacdonald/folio/internal/doc"
	"github.com/dmacdonald/folio/internal/log"
	"github.com/dmacdonald/folio/internal/site"
)

func runRenderNoun(args []string) int {
	if len(args) < 1 {
		printRenderHelp()
		return 1
	}
	if isHelpToken(args[0]) {
		printRenderHelp()
		return 0
	}
	page := args[0]
	if page != "site" && page != "article" {
		fmt.Fprintf(os.Stderr, "Unknown page: %s\n", page)
		printRenderHelp()
		return 1
	}
	if hasHelpFlag(args[1:]) {
		printRenderHelp()
		return 0
	}
	return runRender(page, args[1:])
}

func printRenderHelp() {
	fmt.Println("Usage: folio render site|article [--config PATH] [--format html|pdf] [--out PATH] [--article PATH]")
	fmt.Println("Render a page to stdout or a file. --article overrides content.article.")
}

func runRender(page string, args []string) int {
	fs := flag.NewFlagSet("render "+page, flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	format := fs.String("format", "html", "Output format: html or pdf")
	out := fs.String("out", "", "Output file (default: stdout)")
	articlePath := fs.String("article", "", "Markdown article to render")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	target, err := doc.ParseTarget(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logger := log.New(os.Stderr, cfg.Service.LogLevel, "text")
	articles, docs := renderers(cfg, logger)

	var root *doc.Node
	switch page {
	case "site":
		root = site.Page(cfg.Site)
	case "article":
		path := cfg.Content.Article
		if *articlePath != "" {
			path = *articlePath
		}
		src, err := article.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load article: %v\n", err)
			return 1
		}
		a, err := articles.Render(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render article: %v\n", err)
			return 1
		}
		if target == doc.PDF {
			root = a.Document()
		} else {
			root = a.Page()
		}
	}

	var buf bytes.Buffer
	ctx := doc.WithTarget(context.Background(), target)
	if err := docs.Render(ctx, &buf, root); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render %s: %v\n", page, err)
		return 1
	}

	if *out == "" {
		if _, err := os.Stdout.Write(buf.Bytes()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d bytes)\n", *out, buf.Len())
	return 0
}
