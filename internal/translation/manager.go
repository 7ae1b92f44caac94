package translation

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"horse.fit/lingo/internal/db"
	"horse.fit/lingo/internal/langdetect"
	"horse.fit/lingo/internal/language"
)

// TranslationStore is the persistence surface the manager needs. *db.Pool
// satisfies it; tests use stubs.
type TranslationStore interface {
	LookupCachedTranslation(ctx context.Context, contentHash []byte, targetLang string) (*db.TranslationRow, error)
	UpsertTranslation(ctx context.Context, row db.UpsertTranslationParams) error
	ListRecentTranslations(ctx context.Context, targetLang string, limit int) ([]db.TranslationRow, error)
	TranslationProviderStats(ctx context.Context) ([]db.ProviderStatsRow, error)
}

// RunOptions controls translation execution.
type RunOptions struct {
	TargetLang string
	SourceLang string
	Force      bool
	DryRun     bool
}

// RunStats reports translation execution counters.
type RunStats struct {
	Total      int `json:"total"`
	Translated int `json:"translated"`
	Cached     int `json:"cached"`
	Skipped    int `json:"skipped"`
}

// TextResult is one finished (or skipped) translation.
type TextResult struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text,omitempty"`
	SourceLang     string `json:"source_lang,omitempty"`
	TargetLang     string `json:"target_lang"`
	ProviderName   string `json:"provider_name,omitempty"`
	KeyIndex       *int   `json:"key_index,omitempty"`
	LatencyMs      int64  `json:"latency_ms,omitempty"`
	Cached         bool   `json:"cached"`
	Skipped        bool   `json:"skipped"`
}

// BatchItem is one text in a batch translation run.
type BatchItem struct {
	Text       string
	SourceLang string
}

// BatchProgress reports per-item progress for batch runs.
type BatchProgress struct {
	Current int
	Total   int
}

// Manager coordinates the provider router and the persistent translation
// cache.
type Manager struct {
	store  TranslationStore
	router *Router
}

func NewManager(store TranslationStore, router *Router) *Manager {
	return &Manager{store: store, router: router}
}

// Providers returns the configured provider order.
func (m *Manager) Providers() []string {
	if m == nil || m.router == nil {
		return nil
	}
	return m.router.ProviderNames()
}

// TranslateText translates one text blob, consulting the cache first. Texts
// already in the target language are skipped without a provider call.
func (m *Manager) TranslateText(ctx context.Context, text string, opts RunOptions) (*TextResult, error) {
	if m == nil || m.router == nil {
		return nil, fmt.Errorf("translation manager is not initialized")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("text is required")
	}

	targetLang := language.NormalizeCode(opts.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	sourceLang := language.NormalizeCode(opts.SourceLang)
	if sourceLang == "" {
		sourceLang = langdetect.DetectISO6391(trimmed)
	}

	if language.SameLanguage(sourceLang, targetLang) {
		return &TextResult{
			OriginalText: text,
			SourceLang:   sourceLang,
			TargetLang:   targetLang,
			Skipped:      true,
		}, nil
	}

	contentHash := sha256.Sum256([]byte(text))

	if m.store != nil && !opts.Force {
		cached, err := m.store.LookupCachedTranslation(ctx, contentHash[:], targetLang)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			result := &TextResult{
				OriginalText:   text,
				TranslatedText: cached.TranslatedText,
				SourceLang:     cached.SourceLang,
				TargetLang:     cached.TargetLang,
				ProviderName:   cached.ProviderName,
				KeyIndex:       cached.KeyIndex,
				Cached:         true,
			}
			if cached.LatencyMS != nil {
				result.LatencyMs = int64(*cached.LatencyMS)
			}
			return result, nil
		}
	}

	if opts.DryRun {
		return &TextResult{
			OriginalText: text,
			SourceLang:   sourceLang,
			TargetLang:   targetLang,
			Skipped:      true,
		}, nil
	}

	resp, err := m.router.Translate(ctx, TranslateRequest{
		Text:       text,
		SourceLang: sourceLang,
		TargetLang: targetLang,
	})
	if err != nil {
		return nil, err
	}

	resolvedSourceLang := language.NormalizeCode(resp.SourceLang)
	if resolvedSourceLang == "" {
		resolvedSourceLang = sourceLang
	}
	if resolvedSourceLang == "" {
		resolvedSourceLang = "und"
	}

	latencyMS := int(resp.LatencyMs)
	if latencyMS < 0 {
		latencyMS = 0
	}
	keyIndex := resp.KeyIndex

	if m.store != nil {
		if err := m.store.UpsertTranslation(ctx, db.UpsertTranslationParams{
			ContentHash:    contentHash[:],
			SourceLang:     resolvedSourceLang,
			TargetLang:     targetLang,
			OriginalText:   text,
			TranslatedText: resp.Text,
			ProviderName:   resp.ProviderName,
			KeyIndex:       &keyIndex,
			LatencyMS:      &latencyMS,
		}); err != nil {
			return nil, err
		}
	}

	return &TextResult{
		OriginalText:   text,
		TranslatedText: resp.Text,
		SourceLang:     resolvedSourceLang,
		TargetLang:     targetLang,
		ProviderName:   resp.ProviderName,
		KeyIndex:       &keyIndex,
		LatencyMs:      resp.LatencyMs,
	}, nil
}

// TranslateBatch translates every item in order, aggregating counters and
// reporting progress between items. A failed item aborts the run; the stats
// cover the items finished up to that point.
func (m *Manager) TranslateBatch(
	ctx context.Context,
	items []BatchItem,
	opts RunOptions,
	progress func(BatchProgress),
) (RunStats, []TextResult, error) {
	if m == nil || m.router == nil {
		return RunStats{}, nil, fmt.Errorf("translation manager is not initialized")
	}

	stats := RunStats{}
	results := make([]TextResult, 0, len(items))

	for idx, item := range items {
		if progress != nil {
			progress(BatchProgress{Current: idx + 1, Total: len(items)})
		}

		stats.Total++
		itemOpts := opts
		if item.SourceLang != "" {
			itemOpts.SourceLang = item.SourceLang
		}

		result, err := m.TranslateText(ctx, item.Text, itemOpts)
		if err != nil {
			return stats, results, fmt.Errorf("translate batch item %d: %w", idx+1, err)
		}

		switch {
		case result.Cached:
			stats.Cached++
		case result.Skipped:
			stats.Skipped++
		default:
			stats.Translated++
		}
		results = append(results, *result)
	}

	return stats, results, nil
}

// RecentTranslations lists the newest cached translations.
func (m *Manager) RecentTranslations(ctx context.Context, targetLang string, limit int) ([]db.TranslationRow, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("translation manager has no store")
	}
	return m.store.ListRecentTranslations(ctx, language.NormalizeCode(targetLang), limit)
}

// ProviderStats aggregates cached translations per provider.
func (m *Manager) ProviderStats(ctx context.Context) ([]db.ProviderStatsRow, error) {
	if m == nil || m.store == nil {
		return nil, fmt.Errorf("translation manager has no store")
	}
	return m.store.TranslationProviderStats(ctx)
}
