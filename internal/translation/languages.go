package translation

import (
	"sort"

	"horse.fit/lingo/internal/language"
)

// LanguageOption is one selectable target language for API consumers.
type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// languageLabels covers the target languages the configured providers have in
// common. Codes outside this map still route; they just render uppercased.
var languageLabels = map[string]string{
	"ar": "Arabic",
	"cs": "Czech",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"id": "Indonesian",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"nl": "Dutch",
	"pl": "Polish",
	"pt": "Portuguese",
	"ru": "Russian",
	"sk": "Slovak",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"vi": "Vietnamese",
	"zh": "Chinese",
}

// SupportedLanguageCodes lists the known target language codes, sorted.
func SupportedLanguageCodes() []string {
	codes := make([]string, 0, len(languageLabels))
	for code := range languageLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// LanguageOptions renders the supported languages for API listings.
func LanguageOptions() []LanguageOption {
	codes := SupportedLanguageCodes()
	options := make([]LanguageOption, 0, len(codes))
	for _, code := range codes {
		options = append(options, LanguageOption{Code: code, Label: languageLabels[code]})
	}
	return options
}

func normalizeLangCode(raw string) string {
	return language.NormalizeCode(raw)
}
