// Package ai generates operator-facing text (situation summaries, warning
// broadcasts, emergency SMS) through an external language-model API. Two
// providers are supported; when neither is configured the handlers fall back
// to canned text so the endpoints stay usable.
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/floodwatch/flood-alert/internal/config"
)

// ErrUpstream wraps any provider-side failure: transport errors, non-2xx
// statuses, and responses missing the expected text field. Handlers map it
// to 500.
var ErrUpstream = errors.New("ai: upstream request failed")

// Provider generates a completion for a plain-text prompt. maxTokens bounds
// the response length; providers that cannot enforce it may ignore it.
type Provider interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// FromConfig builds the configured provider. It returns nil when no provider
// is configured, which callers treat as "use placeholder text", and an error
// for an unknown provider name.
func FromConfig(cfg config.Config) (Provider, error) {
	if cfg.AIProvider == "" || cfg.AIAPIKey == "" {
		return nil, nil
	}
	hc := &http.Client{Timeout: cfg.AITimeout}
	if hc.Timeout <= 0 {
		hc.Timeout = 30 * time.Second
	}
	switch strings.ToLower(cfg.AIProvider) {
	case "openai":
		return &OpenAI{APIKey: cfg.AIAPIKey, HTTP: hc}, nil
	case "google":
		return &Gemini{APIKey: cfg.AIAPIKey, HTTP: hc}, nil
	}
	return nil, errors.New("ai: unknown provider " + cfg.AIProvider)
}

// NotConfiguredMessage is returned in place of generated text when no
// provider is set up.
const NotConfiguredMessage = "AI integration not configured. Please set AI_API_KEY and AI_PROVIDER in environment variables."
