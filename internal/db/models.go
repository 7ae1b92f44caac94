package db

import "time"

// Translation maps lingo.translations: one cached translation per
// (content hash, target lang) pair.
type Translation struct {
	TranslationID   int64     `gorm:"column:translation_id;primaryKey;autoIncrement"`
	TranslationUUID string    `gorm:"column:translation_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	ContentHash     []byte    `gorm:"column:content_hash;type:bytea;not null;uniqueIndex:ux_translations_hash_lang,priority:1"`
	SourceLang      string    `gorm:"column:source_lang;type:text;not null"`
	TargetLang      string    `gorm:"column:target_lang;type:text;not null;uniqueIndex:ux_translations_hash_lang,priority:2"`
	OriginalText    string    `gorm:"column:original_text;type:text;not null"`
	TranslatedText  string    `gorm:"column:translated_text;type:text;not null"`
	ProviderName    string    `gorm:"column:provider_name;type:text;not null"`
	KeyIndex        *int      `gorm:"column:key_index;type:integer"`
	LatencyMS       *int      `gorm:"column:latency_ms;type:integer"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Translation) TableName() string { return "lingo.translations" }

func autoMigrateModels() []any {
	return []any{
		&Translation{},
	}
}
