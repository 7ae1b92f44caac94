package app

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/lingo/internal/batch"
	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/translation"
)

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 10*time.Minute, "Command timeout")
	dryRun := fs.Bool("dry-run", false, "Preview work without calling a translation provider")
	force := fs.Bool("force", false, "Retranslate even when cached translations exist")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "batch requires exactly one request file argument")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	path := strings.TrimSpace(fs.Arg(0))
	payload, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read batch file failed: %v\n", err)
		return 1
	}

	request, err := batch.ValidateRequest(json.RawMessage(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid batch request: %v\n", err)
		return 2
	}

	ctx, cancel, runtime, err := connectRuntime(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer runtime.Close()

	items := make([]translation.BatchItem, 0, len(request.Items))
	for _, item := range request.Items {
		items = append(items, translation.BatchItem{
			Text:       item.Text,
			SourceLang: item.SourceLang,
		})
	}

	stats, results, err := runtime.manager.TranslateBatch(ctx, items, translation.RunOptions{
		TargetLang: request.TargetLang,
		SourceLang: request.SourceLang,
		Force:      *force,
		DryRun:     *dryRun,
	}, func(p translation.BatchProgress) {
		fmt.Printf("Translating %d/%d items...\n", p.Current, p.Total)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch translate failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"stats": stats, "results": results}); err != nil {
			fmt.Fprintf(os.Stderr, "Encode results failed: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf(
		"batch file=%s lang=%s total=%d translated=%d cached=%d skipped=%d dry_run=%t force=%t\n",
		path,
		request.TargetLang,
		stats.Total,
		stats.Translated,
		stats.Cached,
		stats.Skipped,
		*dryRun,
		*force,
	)
	return 0
}
