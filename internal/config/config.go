package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"LG_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"LG_DB_MAX_CONNS" default:"8"`

	ProviderOrder string `envconfig:"PROVIDER_ORDER" default:"deepl,azure,google,bing"`

	DeepLAPIKeys        string `envconfig:"DEEPL_API_KEYS" default:""`
	DeepLEndpoint       string `envconfig:"DEEPL_ENDPOINT" default:""`
	DeepLTimeoutSeconds int    `envconfig:"DEEPL_TIMEOUT_SECONDS" default:"30"`

	AzureAPIKeys        string `envconfig:"AZURE_API_KEYS" default:""`
	AzureEndpoint       string `envconfig:"AZURE_ENDPOINT" default:""`
	AzureRegion         string `envconfig:"AZURE_REGION" default:""`
	AzureTimeoutSeconds int    `envconfig:"AZURE_TIMEOUT_SECONDS" default:"30"`

	GoogleEnabled        bool `envconfig:"GOOGLE_ENABLED" default:"false"`
	GoogleTimeoutSeconds int  `envconfig:"GOOGLE_TIMEOUT_SECONDS" default:"15"`

	BingEnabled        bool `envconfig:"BING_ENABLED" default:"false"`
	BingTimeoutSeconds int  `envconfig:"BING_TIMEOUT_SECONDS" default:"15"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("LG_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("LG_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("LG_DB_MIN_CONNS (%d) cannot exceed LG_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.DeepLTimeoutSeconds < 1 {
		return fmt.Errorf("DEEPL_TIMEOUT_SECONDS must be >= 1")
	}
	if c.AzureTimeoutSeconds < 1 {
		return fmt.Errorf("AZURE_TIMEOUT_SECONDS must be >= 1")
	}
	if c.GoogleTimeoutSeconds < 1 {
		return fmt.Errorf("GOOGLE_TIMEOUT_SECONDS must be >= 1")
	}
	if c.BingTimeoutSeconds < 1 {
		return fmt.Errorf("BING_TIMEOUT_SECONDS must be >= 1")
	}
	return nil
}

// ProviderOrderList splits PROVIDER_ORDER into trimmed, non-empty names.
func (c *Config) ProviderOrderList() []string {
	return splitList(c.ProviderOrder)
}

// DeepLAPIKeysList splits DEEPL_API_KEYS into trimmed, non-empty keys.
func (c *Config) DeepLAPIKeysList() []string {
	return splitList(c.DeepLAPIKeys)
}

// AzureAPIKeysList splits AZURE_API_KEYS into trimmed, non-empty keys.
func (c *Config) AzureAPIKeysList() []string {
	return splitList(c.AzureAPIKeys)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
