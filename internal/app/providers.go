package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"horse.fit/lingo/internal/cli"
)

func runProviders(args []string) int {
	fs := flag.NewFlagSet("providers", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, cancel, runtime, err := connectRuntime(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer runtime.Close()

	order := runtime.manager.Providers()
	statsRows, err := runtime.manager.ProviderStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Provider stats failed: %v\n", err)
		return 1
	}

	type providerView struct {
		Position     int        `json:"position"`
		ProviderName string     `json:"provider_name"`
		Translations int64      `json:"translations"`
		AvgLatencyMS *float64   `json:"avg_latency_ms,omitempty"`
		LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	}

	statsByName := make(map[string]providerView, len(statsRows))
	for _, row := range statsRows {
		statsByName[row.ProviderName] = providerView{
			ProviderName: row.ProviderName,
			Translations: row.Translations,
			AvgLatencyMS: row.AvgLatencyMS,
			LastUsedAt:   row.LastUsedAt,
		}
	}

	views := make([]providerView, 0, len(order))
	for idx, name := range order {
		view := statsByName[name]
		view.Position = idx + 1
		view.ProviderName = name
		views = append(views, view)
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(views); err != nil {
			fmt.Fprintf(os.Stderr, "Encode providers failed: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(views))
	for _, view := range views {
		avg := ""
		if view.AvgLatencyMS != nil {
			avg = strconv.FormatFloat(*view.AvgLatencyMS, 'f', 1, 64)
		}
		last := ""
		if view.LastUsedAt != nil {
			last = view.LastUsedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			strconv.Itoa(view.Position),
			view.ProviderName,
			strconv.FormatInt(view.Translations, 10),
			avg,
			last,
		})
	}
	if err := writeTable([]string{"POS", "PROVIDER", "TRANSLATIONS", "AVG_LATENCY_MS", "LAST_USED"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Write table failed: %v\n", err)
		return 1
	}
	return 0
}
