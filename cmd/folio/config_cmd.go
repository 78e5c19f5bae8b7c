package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dmacdonald/folio/internal/config"
)

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp()
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp()
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		printConfigNounHelp()
		return 1
	}
}

func printConfigNounHelp() {
	fmt.Println("Usage: folio config <action>")
	fmt.Println("Actions: check, lock")
}

func printConfigLockHelp() {
	fmt.Println("Usage: folio config lock [--config PATH] [-v|--verbose] [--dry-run]")
	fmt.Println("Record the BLAKE3 hash of the config file in .checksums next to it.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: folio config check [--config PATH]")
	fmt.Println("Load the configuration, verify its checksum and report warnings.")
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("config check", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
		return 1
	}

	if path == "" {
		fmt.Println("No config file found, using defaults")
	} else {
		fmt.Printf("Config: %s\n", path)
	}
	fmt.Printf("Listen: %s\n", cfg.Server.Listen)
	fmt.Printf("State: %s\n", cfg.State.Path)
	fmt.Printf("Article: %s\n", cfg.Content.Article)
	fmt.Printf("Unavailable above: %d\n", cfg.Services.Threshold())

	warnings := 0
	warn := func(msg string) {
		warnings++
		fmt.Printf("WARN %s\n", msg)
	}
	if cfg.Webhook.Secret == "" {
		warn("webhook.secret is empty and " + config.SecretEnvVar + " is unset; every delivery will be rejected")
	}
	if cfg.Server.AdminToken == "" {
		warn("server.admin_token is empty; /admin routes are disabled")
	}
	if _, err := os.Stat(cfg.Content.Article); err != nil {
		warn(fmt.Sprintf("article %s is not readable: %v", cfg.Content.Article, err))
	}

	fmt.Printf("Configuration OK (%d warning(s))\n", warnings)
	return 0
}

func runConfigLock(args []string) int {
	fs := flag.NewFlagSet("config lock", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	verbose := fs.Bool("verbose", false, "Print the hash being recorded")
	fs.BoolVar(verbose, "v", false, "Print the hash being recorded (shorthand)")
	dryRun := fs.Bool("dry-run", false, "Compute the hash without writing .checksums")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path := *configPath
	if path == "" {
		path = config.DiscoverConfigPath()
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "No config file found. Use --config PATH.")
		return 1
	}

	report, err := config.Lock(path, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock configuration: %v\n", err)
		return 1
	}

	if *verbose {
		fmt.Printf("HASH %s: %s\n", report.ConfigPath, report.Hash)
	}
	if !report.Written {
		fmt.Printf("DRY-RUN %s: not written\n", report.ChecksumPath)
		fmt.Println("Dry run completed")
		return 0
	}
	if *verbose {
		fmt.Printf("WROTE %s\n", report.ChecksumPath)
	}
	fmt.Printf("Successfully locked configuration %s\n", report.ConfigPath)
	return 0
}
