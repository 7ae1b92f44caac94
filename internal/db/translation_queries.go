package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TranslationRow is one cached translation row.
type TranslationRow struct {
	TranslationUUID string
	SourceLang      string
	TargetLang      string
	OriginalText    string
	TranslatedText  string
	ProviderName    string
	KeyIndex        *int
	LatencyMS       *int
	CreatedAt       time.Time
}

// UpsertTranslationParams controls translation cache upserts.
type UpsertTranslationParams struct {
	ContentHash    []byte
	SourceLang     string
	TargetLang     string
	OriginalText   string
	TranslatedText string
	ProviderName   string
	KeyIndex       *int
	LatencyMS      *int
}

// ProviderStatsRow aggregates cached translations per provider.
type ProviderStatsRow struct {
	ProviderName string
	Translations int64
	AvgLatencyMS *float64
	LastUsedAt   *time.Time
}

// LookupCachedTranslation returns the cached row for a content hash and
// target language, or nil when there is no cache hit.
func (p *Pool) LookupCachedTranslation(ctx context.Context, contentHash []byte, targetLang string) (*TranslationRow, error) {
	const q = `
SELECT
	t.translation_uuid::text,
	t.source_lang,
	t.target_lang,
	t.original_text,
	t.translated_text,
	t.provider_name,
	t.key_index,
	t.latency_ms,
	t.created_at
FROM lingo.translations t
WHERE t.content_hash = $1
  AND t.target_lang = $2
LIMIT 1
`

	var row TranslationRow
	err := p.QueryRow(ctx, q, contentHash, strings.TrimSpace(targetLang)).Scan(
		&row.TranslationUUID,
		&row.SourceLang,
		&row.TargetLang,
		&row.OriginalText,
		&row.TranslatedText,
		&row.ProviderName,
		&row.KeyIndex,
		&row.LatencyMS,
		&row.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query translation cache: %w", err)
	}
	return &row, nil
}

// UpsertTranslation inserts or refreshes one cached translation.
func (p *Pool) UpsertTranslation(ctx context.Context, row UpsertTranslationParams) error {
	const q = `
INSERT INTO lingo.translations (
	content_hash,
	source_lang,
	target_lang,
	original_text,
	translated_text,
	provider_name,
	key_index,
	latency_ms
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (content_hash, target_lang)
DO UPDATE SET
	source_lang = EXCLUDED.source_lang,
	original_text = EXCLUDED.original_text,
	translated_text = EXCLUDED.translated_text,
	provider_name = EXCLUDED.provider_name,
	key_index = EXCLUDED.key_index,
	latency_ms = EXCLUDED.latency_ms,
	updated_at = now()
`

	if _, err := p.Exec(
		ctx,
		q,
		row.ContentHash,
		row.SourceLang,
		row.TargetLang,
		row.OriginalText,
		row.TranslatedText,
		row.ProviderName,
		row.KeyIndex,
		row.LatencyMS,
	); err != nil {
		return fmt.Errorf("upsert translation cache: %w", err)
	}
	return nil
}

// ListRecentTranslations returns the newest cached translations, optionally
// filtered by target language.
func (p *Pool) ListRecentTranslations(ctx context.Context, targetLang string, limit int) ([]TranslationRow, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT
	t.translation_uuid::text,
	t.source_lang,
	t.target_lang,
	t.original_text,
	t.translated_text,
	t.provider_name,
	t.key_index,
	t.latency_ms,
	t.created_at
FROM lingo.translations t
WHERE ($1 = '' OR t.target_lang = $1)
ORDER BY t.created_at DESC, t.translation_id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, strings.TrimSpace(targetLang), limit)
	if err != nil {
		return nil, fmt.Errorf("query recent translations: %w", err)
	}
	defer rows.Close()

	items := make([]TranslationRow, 0, limit)
	for rows.Next() {
		var row TranslationRow
		if err := rows.Scan(
			&row.TranslationUUID,
			&row.SourceLang,
			&row.TargetLang,
			&row.OriginalText,
			&row.TranslatedText,
			&row.ProviderName,
			&row.KeyIndex,
			&row.LatencyMS,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recent translation row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent translations: %w", err)
	}

	return items, nil
}

// TranslationProviderStats aggregates cache volume and latency per provider.
func (p *Pool) TranslationProviderStats(ctx context.Context) ([]ProviderStatsRow, error) {
	const q = `
SELECT
	t.provider_name,
	COUNT(*) AS translations,
	AVG(t.latency_ms) AS avg_latency_ms,
	MAX(t.updated_at) AS last_used_at
FROM lingo.translations t
GROUP BY t.provider_name
ORDER BY translations DESC, t.provider_name
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query provider stats: %w", err)
	}
	defer rows.Close()

	items := make([]ProviderStatsRow, 0, 4)
	for rows.Next() {
		var row ProviderStatsRow
		if err := rows.Scan(
			&row.ProviderName,
			&row.Translations,
			&row.AvgLatencyMS,
			&row.LastUsedAt,
		); err != nil {
			return nil, fmt.Errorf("scan provider stats row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider stats: %w", err)
	}

	return items, nil
}
