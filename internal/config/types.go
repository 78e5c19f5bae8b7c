package config

// Config represents the complete folio configuration.
type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	State    StateConfig    `yaml:"state"`
	Server   ServerConfig   `yaml:"server"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Services ServicesConfig `yaml:"services"`
	Content  ContentConfig  `yaml:"content"`
	Render   RenderConfig   `yaml:"render"`
	Site     SiteConfig     `yaml:"site"`
}

// ServiceConfig defines process-level settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// LogFile enables rotated file logging when set.
	LogFile       string `yaml:"log_file,omitempty"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb,omitempty"`
	LogMaxBackups int    `yaml:"log_max_backups,omitempty"`
	LogMaxAgeDays int    `yaml:"log_max_age_days,omitempty"`
}

// StateConfig defines where the delivery log lives.
type StateConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// AdminToken guards /admin/*. Empty disables the admin routes.
	AdminToken     string   `yaml:"admin_token,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// WebhookConfig defines the signature checker behind /api/hooks.
type WebhookConfig struct {
	Secret           string   `yaml:"secret"`
	SignatureHeaders []string `yaml:"signature_headers"`
	MaxBodySize      string   `yaml:"max_body_size"`
}

// ServicesConfig tunes the availability stub.
type ServicesConfig struct {
	// UnavailableAbove is the draw (1..10) above which a check reports unavailable.
	UnavailableAbove *int `yaml:"unavailable_above,omitempty"`
}

// ContentConfig locates static content.
type ContentConfig struct {
	Article   string `yaml:"article"`
	StaticDir string `yaml:"static_dir"`
}

// RenderConfig tunes the markup and PDF targets.
type RenderConfig struct {
	PtPerRem       float64 `yaml:"pt_per_rem"`
	HighlightStyle string  `yaml:"highlight_style"`
}

// SiteConfig carries landing page content.
type SiteConfig struct {
	Owner    string    `yaml:"owner"`
	Summary  string    `yaml:"summary"`
	Footer   string    `yaml:"footer"`
	Avatar   string    `yaml:"avatar,omitempty"`
	Nav      []NavLink `yaml:"nav"`
	Projects []Project `yaml:"projects,omitempty"`
}

// NavLink is one header navigation entry.
type NavLink struct {
	Label string `yaml:"label"`
	Href  string `yaml:"href"`
}

// Project is one entry in the landing page projects section.
type Project struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Href        string `yaml:"href,omitempty"`
}

// Default values
const (
	DefaultUnavailableAbove = 5
	DefaultMaxBodySize      = "1MB"
)

// Defaults returns a Config with the values folio runs with when no file is given.
func Defaults() *Config {
	threshold := DefaultUnavailableAbove
	return &Config{
		Service: ServiceConfig{
			Name:          "folio",
			LogLevel:      "info",
			LogFormat:     "json",
			LogMaxSizeMB:  50,
			LogMaxBackups: 3,
			LogMaxAgeDays: 28,
		},
		State: StateConfig{
			Path: "./data/folio.db",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:3000",
		},
		Webhook: WebhookConfig{
			SignatureHeaders: []string{"x-signature-256", "x-hub-signature-256"},
			MaxBodySize:      DefaultMaxBodySize,
		},
		Services: ServicesConfig{
			UnavailableAbove: &threshold,
		},
		Content: ContentConfig{
			Article:   "articles/article.md",
			StaticDir: "public",
		},
		Render: RenderConfig{
			PtPerRem:       12,
			HighlightStyle: "monokai",
		},
		Site: SiteConfig{
			Owner:   "David MacDonald",
			Summary: "Summary",
			Footer:  "Footer",
			Nav: []NavLink{
				{Label: "Projects", Href: "/projects"},
				{Label: "Contact", Href: "/contact"},
			},
		},
	}
}

// Threshold returns the configured unavailability threshold.
func (s ServicesConfig) Threshold() int {
	if s.UnavailableAbove == nil {
		return DefaultUnavailableAbove
	}
	return *s.UnavailableAbove
}
