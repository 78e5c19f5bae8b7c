package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmacdonald/folio/internal/storage"
	"github.com/dmacdonald/folio/internal/webhook"
)

func runHooksNoun(args []string) int {
	if len(args) < 1 {
		printHooksNounHelp()
		return 1
	}
	if isHelpToken(args[0]) {
		printHooksNounHelp()
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "sign":
		if hasHelpFlag(actionArgs) {
			printHooksSignHelp()
			return 0
		}
		return runHooksSign(actionArgs)
	case "list":
		if hasHelpFlag(actionArgs) {
			printHooksListHelp()
			return 0
		}
		return runHooksList(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown hooks action: %s\n", action)
		printHooksNounHelp()
		return 1
	}
}

func printHooksNounHelp() {
	fmt.Println("Usage: folio hooks <action>")
	fmt.Println("Actions: sign, list")
}

func printHooksSignHelp() {
	fmt.Println("Usage: folio hooks sign [--config PATH] [--secret S] [--file PATH] [--header]")
	fmt.Println("Print the sha256= signature for a payload read from --file or stdin.")
	fmt.Println("The secret defaults to webhook.secret from the config.")
}

func printHooksListHelp() {
	fmt.Println("Usage: folio hooks list [--config PATH] [--limit N] [--json]")
	fmt.Println("Show the most recent recorded webhook deliveries.")
}

func runHooksSign(args []string) int {
	fs := flag.NewFlagSet("hooks sign", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	secret := fs.String("secret", "", "Shared secret (default: webhook.secret)")
	file := fs.String("file", "", "Payload file (default: stdin)")
	withHeader := fs.Bool("header", false, "Prefix the signature with the default header name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	key := *secret
	if key == "" {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			return 1
		}
		key = cfg.Webhook.Secret
	}
	if key == "" {
		fmt.Fprintln(os.Stderr, "No secret available. Use --secret or configure webhook.secret.")
		return 1
	}

	var (
		body []byte
		err  error
	)
	if *file != "" {
		body, err = os.ReadFile(*file)
	} else {
		body, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read payload: %v\n", err)
		return 1
	}

	sig := webhook.Sign(body, key)
	if *withHeader {
		fmt.Printf("%s: %s\n", webhook.DefaultHeader, sig)
		return 0
	}
	fmt.Println(sig)
	return 0
}

func runHooksList(args []string) int {
	fs := flag.NewFlagSet("hooks list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	limit := fs.Int("limit", storage.DefaultListLimit, "Maximum deliveries to show")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	store := storage.NewDeliveryStore(db)
	deliveries, err := store.List(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list deliveries: %v\n", err)
		return 1
	}

	if *jsonOut {
		if deliveries == nil {
			deliveries = []webhook.Delivery{}
		}
		data, err := json.MarshalIndent(deliveries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	if len(deliveries) == 0 {
		fmt.Println("No deliveries recorded")
		return 0
	}
	fmt.Printf("%-20s  %-12s  %-20s  %8s  %s\n", "RECEIVED", "RESULT", "HEADER", "BYTES", "ID")
	for _, d := range deliveries {
		result := "unauthorised"
		if d.Authorised {
			result = "authorised"
		}
		header := d.Header
		if header == "" {
			header = "-"
		}
		fmt.Printf("%-20s  %-12s  %-20s  %8d  %s\n",
			d.ReceivedAt.UTC().Format(time.DateTime), result, header, d.BodySize, d.ID)
	}
	return 0
}
