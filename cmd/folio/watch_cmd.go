package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmacdonald/folio/internal/tui/watch"
)

// AdminTokenEnvVar supplies the watch token when --token is not given.
const AdminTokenEnvVar = "FOLIO_ADMIN_TOKEN"

func runWatch(args []string) int {
	if hasHelpFlag(args) {
		printWatchHelp()
		return 0
	}
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	url := fs.String("url", "", "Server base URL (default: from server.listen)")
	token := fs.String("token", os.Getenv(AdminTokenEnvVar), "Admin bearer token")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if *url == "" || *token == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		if *url == "" {
			*url = baseURL(cfg.Server.Listen)
		}
		if *token == "" {
			*token = cfg.Server.AdminToken
		}
	}

	if *token == "" {
		fmt.Fprintf(os.Stderr, "Error: admin token required. Use --token or %s.\n", AdminTokenEnvVar)
		return 1
	}

	p := tea.NewProgram(watch.New(*url, *token))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

func printWatchHelp() {
	fmt.Println("Usage: folio watch [--config PATH] [--url URL] [--token TOKEN]")
	fmt.Println()
	fmt.Println("Live view of webhook deliveries, status checks and page renders.")
	fmt.Println()
	fmt.Println("Keybindings:")
	fmt.Println("  q, Ctrl+C        Quit")
	fmt.Println("  ↑/↓, k/j         Scroll events")
}

// baseURL turns a listen address into a URL the local client can dial.
func baseURL(listen string) string {
	if strings.HasPrefix(listen, "http://") || strings.HasPrefix(listen, "https://") {
		return strings.TrimRight(listen, "/")
	}
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return "http://" + listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
