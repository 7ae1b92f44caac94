package translation

import "context"

// Translator is one credential-bound translation client. Keyed providers get
// one Translator per API key; keyless providers get a single Translator.
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Provider() string
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 (for example: "zh", "en"); empty means auto-detect
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	KeyIndex     int
	LatencyMs    int64
}
