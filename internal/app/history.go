package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"horse.fit/lingo/internal/cli"
)

const historyTextPreviewRunes = 60

func runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	lang := fs.String("lang", "", "Filter by target language; empty lists every language")
	limit := fs.Int("limit", 50, "Maximum rows to list (1-500)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *limit <= 0 || *limit > 500 {
		fmt.Fprintln(os.Stderr, "--limit must be between 1 and 500")
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

	rows, err := runtime.manager.RecentTranslations(ctx, *lang, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List translations failed: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(rows); err != nil {
			fmt.Fprintf(os.Stderr, "Encode history failed: %v\n", err)
			return 1
		}
		return 0
	}

	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		keyIndex := ""
		if row.KeyIndex != nil {
			keyIndex = strconv.Itoa(*row.KeyIndex)
		}
		tableRows = append(tableRows, []string{
			row.CreatedAt.UTC().Format(time.RFC3339),
			row.SourceLang,
			row.TargetLang,
			row.ProviderName,
			keyIndex,
			truncateRunes(row.TranslatedText, historyTextPreviewRunes),
		})
	}
	if err := writeTable([]string{"CREATED", "FROM", "TO", "PROVIDER", "KEY", "TEXT"}, tableRows); err != nil {
		fmt.Fprintf(os.Stderr, "Write table failed: %v\n", err)
		return 1
	}
	return 0
}

func truncateRunes(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max-1]) + "…"
}
