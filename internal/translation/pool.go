package translation

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	ProviderDeepL  = "deepl"
	ProviderAzure  = "azure"
	ProviderGoogle = "google"
	ProviderBing   = "bing"
)

// canonicalProviderOrder fixes the position of providers that are configured
// but left out of PROVIDER_ORDER: they are appended after the ordered ones.
var canonicalProviderOrder = []string{ProviderDeepL, ProviderAzure, ProviderGoogle, ProviderBing}

// PoolConfig carries everything the pool builder needs. The app layer maps
// environment configuration into this shape.
type PoolConfig struct {
	ProviderOrder []string
	DeepL         DeepLConfig
	Azure         AzureConfig
	Google        GoogleConfig
	Bing          BingConfig
}

type DeepLConfig struct {
	APIKeys  []string
	Endpoint string
	Timeout  time.Duration
}

type AzureConfig struct {
	APIKeys  []string
	Endpoint string
	Region   string
	Timeout  time.Duration
}

type GoogleConfig struct {
	Enabled bool
	Timeout time.Duration
}

type BingConfig struct {
	Enabled bool
	Timeout time.Duration
}

// BuildGroups constructs the ordered provider group list from configuration.
// Pure construction: no network calls. Providers named in the order without
// credentials (or with their enabled flag off) are skipped with a warning;
// configured providers missing from the order are appended in canonical
// order. Unknown or duplicate order entries are configuration errors.
func BuildGroups(cfg PoolConfig, logger zerolog.Logger) ([]*Group, error) {
	built := make(map[string]*Group, 4)

	if keys := trimKeys(cfg.DeepL.APIKeys); len(keys) > 0 {
		translators := make([]Translator, 0, len(keys))
		for i, key := range keys {
			translators = append(translators, NewDeepLTranslator(key, i, cfg.DeepL.Endpoint, cfg.DeepL.Timeout))
		}
		group, err := NewGroup(ProviderDeepL, translators)
		if err != nil {
			return nil, err
		}
		built[ProviderDeepL] = group
	}

	if keys := trimKeys(cfg.Azure.APIKeys); len(keys) > 0 {
		translators := make([]Translator, 0, len(keys))
		for i, key := range keys {
			translators = append(translators, NewAzureTranslator(key, i, cfg.Azure.Endpoint, cfg.Azure.Region, cfg.Azure.Timeout))
		}
		group, err := NewGroup(ProviderAzure, translators)
		if err != nil {
			return nil, err
		}
		built[ProviderAzure] = group
	}

	if cfg.Google.Enabled {
		group, err := NewGroup(ProviderGoogle, []Translator{NewGoogleTranslator(cfg.Google.Timeout)})
		if err != nil {
			return nil, err
		}
		built[ProviderGoogle] = group
	}

	if cfg.Bing.Enabled {
		group, err := NewGroup(ProviderBing, []Translator{NewBingTranslator(cfg.Bing.Timeout)})
		if err != nil {
			return nil, err
		}
		built[ProviderBing] = group
	}

	ordered := make([]*Group, 0, len(built))
	placed := make(map[string]struct{}, len(built))

	for _, raw := range cfg.ProviderOrder {
		name := normalizeProviderName(raw)
		if name == "" {
			continue
		}
		if !isKnownProvider(name) {
			return nil, fmt.Errorf("unknown provider %q in provider order", name)
		}
		if _, dup := placed[name]; dup {
			return nil, fmt.Errorf("duplicate provider %q in provider order", name)
		}
		placed[name] = struct{}{}

		group, ok := built[name]
		if !ok {
			logger.Warn().Str("provider", name).Msg("provider in order has no usable configuration, skipping")
			continue
		}
		ordered = append(ordered, group)
	}

	for _, name := range canonicalProviderOrder {
		if _, done := placed[name]; done {
			continue
		}
		if group, ok := built[name]; ok {
			ordered = append(ordered, group)
		}
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("no usable translation providers are configured")
	}
	return ordered, nil
}

// NewRouterFromPoolConfig is the startup path: build groups, wrap the router.
func NewRouterFromPoolConfig(cfg PoolConfig, logger zerolog.Logger) (*Router, error) {
	groups, err := BuildGroups(cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewRouter(groups, logger)
}

func isKnownProvider(name string) bool {
	for _, known := range canonicalProviderOrder {
		if name == known {
			return true
		}
	}
	return false
}

func trimKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
