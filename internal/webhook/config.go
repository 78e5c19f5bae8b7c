package webhook

import (
	"fmt"

	"github.com/dmacdonald/folio/internal/config"
)

// FromGlobalConfig converts config.WebhookConfig to webhook.Config.
// An empty secret is allowed; every delivery then fails verification.
func FromGlobalConfig(wc *config.WebhookConfig) (Config, error) {
	if wc == nil {
		return Config{}, fmt.Errorf("webhook config is nil")
	}

	size, err := config.ParseSize(wc.MaxBodySize)
	if err != nil {
		return Config{}, fmt.Errorf("invalid max_body_size %q: %w", wc.MaxBodySize, err)
	}

	headers := wc.SignatureHeaders
	if len(headers) == 0 {
		headers = []string{DefaultHeader, GitHubHeader}
	}

	return Config{
		Secret:           wc.Secret,
		SignatureHeaders: headers,
		MaxBodySize:      size,
	}, nil
}
