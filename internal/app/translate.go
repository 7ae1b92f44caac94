package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"horse.fit/lingo/internal/cli"
	"horse.fit/lingo/internal/language"
	"horse.fit/lingo/internal/translation"
)

func runTranslate(args []string) int {
	fs := flag.NewFlagSet("translate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")
	lang := fs.String("lang", "", "Target language (ISO 639-1, for example: en, zh)")
	source := fs.String("source", "", "Source language; detected from the text when empty")
	dryRun := fs.Bool("dry-run", false, "Preview work without calling a translation provider")
	force := fs.Bool("force", false, "Retranslate even when a cached translation exists")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "translate requires exactly one text argument")
		printTranslateUsage()
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	targetLang := language.NormalizeCode(*lang)
	if targetLang == "" {
		fmt.Fprintln(os.Stderr, "--lang is required and must be a valid language code")
		return 2
	}

	text := strings.TrimSpace(fs.Arg(0))
	if text == "" {
		fmt.Fprintln(os.Stderr, "translate argument must not be empty")
		return 2
	}

	ctx, cancel, runtime, err := connectRuntime(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer runtime.Close()

	result, err := runtime.manager.TranslateText(ctx, text, translation.RunOptions{
		TargetLang: targetLang,
		SourceLang: *source,
		Force:      *force,
		DryRun:     *dryRun,
	})
	if err != nil {
		var exhausted *translation.ExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Fprintf(os.Stderr, "Translate failed, all providers exhausted: %s\n", strings.Join(exhausted.Attempted, ", "))
			return 1
		}
		fmt.Fprintf(os.Stderr, "Translate failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Encode result failed: %v\n", err)
			return 1
		}
		return 0
	}

	switch {
	case result.Skipped:
		fmt.Printf("skipped: text already in %s\n", result.TargetLang)
	case result.Cached:
		fmt.Println(result.TranslatedText)
		fmt.Printf("cached lang=%s->%s provider=%s\n", result.SourceLang, result.TargetLang, result.ProviderName)
	default:
		fmt.Println(result.TranslatedText)
		fmt.Printf(
			"translated lang=%s->%s provider=%s latency_ms=%d\n",
			result.SourceLang,
			result.TargetLang,
			result.ProviderName,
			result.LatencyMs,
		)
	}
	return 0
}

func printTranslateUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lingo translate --lang <code> [flags] \"text to translate\"")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"lingo translate -h\" for flags.")
}
