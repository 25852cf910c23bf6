package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
//
// Credentials for enrichment collaborators (speech, vision, search, telegram)
// are not required here: their absence is reported per request.
func (c *Config) Validate() error {
	var errs []string

	// Language model
	switch c.LLM.Provider {
	case LLMProviderAzure:
		if c.LLM.Endpoint == "" {
			errs = append(errs, "OPENAI_ENDPOINT is required for the azure provider")
		}
		if c.LLM.APIVersion == "" {
			errs = append(errs, "OPENAI_API_VERSION is required for the azure provider")
		}
	case LLMProviderOpenAI:
	default:
		errs = append(errs, fmt.Sprintf("OPENAI_PROVIDER must be azure or openai, got %q", c.LLM.Provider))
	}
	if c.LLM.Key == "" {
		errs = append(errs, "OPENAI_KEY is required")
	}
	if c.LLM.MaxTokens < 0 {
		errs = append(errs, "OPENAI_MAX_TOKENS must not be negative")
	}

	// Storage
	switch c.Storage.Driver {
	case StorageRedis:
	case StoragePostgres:
		if c.DB.Password == "" {
			errs = append(errs, "DB_PASSWORD is required for the postgres storage driver")
		}
		if c.DB.Port < 1 || c.DB.Port > 65535 {
			errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_DRIVER must be redis or postgres, got %q", c.Storage.Driver))
	}
	if strings.ContainsAny(c.Storage.Container, " /") {
		errs = append(errs, "STORAGE_CONTAINER must not contain spaces or slashes")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if c.Search.Count < 1 || c.Search.Count > 20 {
		errs = append(errs, fmt.Sprintf("SERP_API_COUNT must be 1–20, got %d", c.Search.Count))
	}

	// Optional collaborators: warn only
	if c.Telegram.Token == "" {
		slog.Warn("TELEGRAM_TOKEN is empty; telegram replies will not be delivered")
	}
	if c.Search.SerpAPIKey == "" {
		slog.Warn("SERP_API_KEY is empty; web search is disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
