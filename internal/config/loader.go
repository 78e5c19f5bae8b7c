package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// SecretEnvVar is consulted when webhook.secret is empty after loading.
const SecretEnvVar = "WEBHOOK_SECRET"

// Load reads and parses configuration from a file. An empty path yields
// Defaults() with environment fallbacks applied.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		cfg := Defaults()
		resolveSecrets(cfg)
		return cfg, nil
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	if err := verifyConfigHash(absPath); err != nil {
		return nil, err
	}

	cfg, err := loadConfigFile(absPath)
	if err != nil {
		return nil, err
	}

	cfg = applyConfigDefaults(cfg)

	// Relative content paths resolve against the config file's directory.
	baseDir := filepath.Dir(absPath)
	cfg.Content.Article = resolveRelative(baseDir, cfg.Content.Article)
	cfg.Content.StaticDir = resolveRelative(baseDir, cfg.Content.StaticDir)

	resolveSecrets(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DiscoverConfigPath finds a config file by checking standard locations.
// Priority order: $FOLIO_CONFIG, ~/.config/folio/config.yaml, /etc/folio/config.yaml, ./config.yaml.
// Returns "" without error when nothing is found; folio then runs on defaults.
func DiscoverConfigPath() string {
	if p := os.Getenv("FOLIO_CONFIG"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	candidates := []string{}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "folio", "config.yaml"))
	}
	candidates = append(candidates, "/etc/folio/config.yaml", "./config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadConfigFile loads and parses a single config file.
func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var cfg Config
	if root.Kind == 0 {
		return &cfg, nil
	}
	interpolateNode(&root)
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

func verifyConfigHash(path string) error {
	dir := filepath.Dir(path)
	checksums, err := LoadChecksums(dir)
	if err != nil {
		// No manifest: integrity checking is opt-in.
		return nil
	}

	basename := filepath.Base(path)
	expectedHash, ok := checksums.Hashes[basename]
	if !ok {
		return fmt.Errorf("config file %s has no hash in checksums at %s\n"+
			"Run: folio config lock --config %s", basename, dir, path)
	}
	if err := VerifyFileHash(path, expectedHash); err != nil {
		return fmt.Errorf("config verification failed for %s: %w\n"+
			"If you edited this file intentionally, run: folio config lock --config %s", path, err, path)
	}
	return nil
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) *Config {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	if cfg.Service.LogFormat == "" {
		cfg.Service.LogFormat = defaults.Service.LogFormat
	}
	if cfg.Service.LogMaxSizeMB == 0 {
		cfg.Service.LogMaxSizeMB = defaults.Service.LogMaxSizeMB
	}
	if cfg.Service.LogMaxBackups == 0 {
		cfg.Service.LogMaxBackups = defaults.Service.LogMaxBackups
	}
	if cfg.Service.LogMaxAgeDays == 0 {
		cfg.Service.LogMaxAgeDays = defaults.Service.LogMaxAgeDays
	}

	if cfg.State.Path == "" {
		cfg.State.Path = defaults.State.Path
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = defaults.Server.Listen
	}

	if len(cfg.Webhook.SignatureHeaders) == 0 {
		cfg.Webhook.SignatureHeaders = defaults.Webhook.SignatureHeaders
	}
	if cfg.Webhook.MaxBodySize == "" {
		cfg.Webhook.MaxBodySize = defaults.Webhook.MaxBodySize
	}

	if cfg.Services.UnavailableAbove == nil {
		cfg.Services.UnavailableAbove = defaults.Services.UnavailableAbove
	}

	if cfg.Content.Article == "" {
		cfg.Content.Article = defaults.Content.Article
	}
	if cfg.Content.StaticDir == "" {
		cfg.Content.StaticDir = defaults.Content.StaticDir
	}

	if cfg.Render.PtPerRem == 0 {
		cfg.Render.PtPerRem = defaults.Render.PtPerRem
	}
	if cfg.Render.HighlightStyle == "" {
		cfg.Render.HighlightStyle = defaults.Render.HighlightStyle
	}

	if cfg.Site.Owner == "" {
		cfg.Site.Owner = defaults.Site.Owner
	}
	if cfg.Site.Summary == "" {
		cfg.Site.Summary = defaults.Site.Summary
	}
	if cfg.Site.Footer == "" {
		cfg.Site.Footer = defaults.Site.Footer
	}
	if len(cfg.Site.Nav) == 0 {
		cfg.Site.Nav = defaults.Site.Nav
	}

	return cfg
}

// resolveSecrets treats an unresolved ${VAR} secret as unconfigured and
// falls back to $WEBHOOK_SECRET.
func resolveSecrets(cfg *Config) {
	if envVarPattern.MatchString(cfg.Webhook.Secret) {
		cfg.Webhook.Secret = ""
	}
	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = os.Getenv(SecretEnvVar)
	}
	if envVarPattern.MatchString(cfg.Server.AdminToken) {
		cfg.Server.AdminToken = ""
	}
}

func resolveRelative(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// interpolateNode expands ${VAR} inside scalar values only, so substituted
// text is never parsed as YAML. Plain scalars that changed have their tag
// re-resolved from the new value; quoted scalars stay strings.
func interpolateNode(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		expanded := interpolateEnv(n.Value)
		if expanded != n.Value {
			n.Value = expanded
			if n.Style == 0 {
				n.Tag = ""
			}
		}
		return
	}
	for _, c := range n.Content {
		interpolateNode(c)
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	switch strings.ToLower(cfg.Service.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	for i, h := range cfg.Webhook.SignatureHeaders {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("webhook.signature_headers[%d] is empty", i)
		}
	}
	if _, err := ParseSize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size: %w", err)
	}

	if t := cfg.Services.Threshold(); t < 0 || t > 10 {
		return fmt.Errorf("services.unavailable_above must be between 0 and 10 (got %d)", t)
	}

	if cfg.Render.PtPerRem <= 0 {
		return fmt.Errorf("render.pt_per_rem must be positive")
	}

	for i, nav := range cfg.Site.Nav {
		if nav.Label == "" || nav.Href == "" {
			return fmt.Errorf("site.nav[%d]: label and href are required", i)
		}
	}

	return nil
}

// ParseSize parses size strings like "1MB", "512KB", "2048576" to bytes.
// Returns the 1 MB default if empty.
func ParseSize(size string) (int64, error) {
	if size == "" {
		size = DefaultMaxBodySize
	}

	upper := strings.ToUpper(strings.TrimSpace(size))
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result/multiplier != value {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
