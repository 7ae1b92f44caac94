package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/config"
	"horse.fit/lingo/internal/db"
	"horse.fit/lingo/internal/logging"
	"horse.fit/lingo/internal/translation"
)

const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
)

func parseOutputFormat(raw, defaultFormat string) (string, error) {
	format := strings.TrimSpace(strings.ToLower(raw))
	if format == "" {
		format = strings.TrimSpace(strings.ToLower(defaultFormat))
	}
	switch format {
	case outputFormatTable, outputFormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("--format must be table or json")
	}
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeTable(headers []string, rows [][]string) error {
	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	if _, err := fmt.Fprintln(writer, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(writer, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// poolConfigFromEnv maps environment configuration into the provider pool
// shape.
func poolConfigFromEnv(cfg *config.Config) translation.PoolConfig {
	return translation.PoolConfig{
		ProviderOrder: cfg.ProviderOrderList(),
		DeepL: translation.DeepLConfig{
			APIKeys:  cfg.DeepLAPIKeysList(),
			Endpoint: cfg.DeepLEndpoint,
			Timeout:  time.Duration(cfg.DeepLTimeoutSeconds) * time.Second,
		},
		Azure: translation.AzureConfig{
			APIKeys:  cfg.AzureAPIKeysList(),
			Endpoint: cfg.AzureEndpoint,
			Region:   cfg.AzureRegion,
			Timeout:  time.Duration(cfg.AzureTimeoutSeconds) * time.Second,
		},
		Google: translation.GoogleConfig{
			Enabled: cfg.GoogleEnabled,
			Timeout: time.Duration(cfg.GoogleTimeoutSeconds) * time.Second,
		},
		Bing: translation.BingConfig{
			Enabled: cfg.BingEnabled,
			Timeout: time.Duration(cfg.BingTimeoutSeconds) * time.Second,
		},
	}
}

// commandRuntime bundles everything a translation command needs after
// startup wiring.
type commandRuntime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	pool    *db.Pool
	manager *translation.Manager
}

func (r *commandRuntime) Close() {
	if r != nil && r.pool != nil {
		r.pool.Close()
	}
}

// connectRuntime loads env + config, opens the database pool, and builds the
// provider router and manager.
func connectRuntime(timeout time.Duration, envLoader *cli.EnvLoader) (context.Context, context.CancelFunc, *commandRuntime, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	router, err := translation.NewRouterFromPoolConfig(poolConfigFromEnv(cfg), logger)
	if err != nil {
		pool.Close()
		cancel()
		return nil, nil, nil, fmt.Errorf("failed to build provider pool: %w", err)
	}

	runtime := &commandRuntime{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		manager: translation.NewManager(pool, router),
	}
	return ctx, cancel, runtime, nil
}
