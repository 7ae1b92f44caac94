package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultDeepLEndpoint serves paid DeepL API keys.
	DefaultDeepLEndpoint = "https://api.deepl.com"
	// DefaultDeepLFreeEndpoint serves free-plan keys (suffix ":fx").
	DefaultDeepLFreeEndpoint = "https://api-free.deepl.com"

	defaultDeepLTimeout = 30 * time.Second
)

// DeepLTranslator calls the DeepL v2 text translation API with one API key.
type DeepLTranslator struct {
	apiKey      string
	keyIndex    int
	endpointURL string
	client      *http.Client
}

func NewDeepLTranslator(apiKey string, keyIndex int, endpoint string, timeout time.Duration) *DeepLTranslator {
	trimmedKey := strings.TrimSpace(apiKey)
	if timeout <= 0 {
		timeout = defaultDeepLTimeout
	}

	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if base == "" {
		base = DefaultDeepLEndpoint
		if strings.HasSuffix(trimmedKey, ":fx") {
			base = DefaultDeepLFreeEndpoint
		}
	}

	return &DeepLTranslator{
		apiKey:      trimmedKey,
		keyIndex:    keyIndex,
		endpointURL: base + "/v2/translate",
		client:      &http.Client{Timeout: timeout},
	}
}

func (t *DeepLTranslator) Provider() string {
	return ProviderDeepL
}

func (t *DeepLTranslator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if t == nil {
		return nil, fmt.Errorf("deepl translator is nil")
	}

	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	payload := deepLRequest{
		Text:       []string{req.Text},
		TargetLang: strings.ToUpper(targetLang),
	}
	if source := normalizeLangCode(req.SourceLang); source != "" {
		payload.SourceLang = strings.ToUpper(source)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal deepl request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build deepl request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send deepl request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read deepl response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, deepLStatusError(resp.StatusCode, respBody)
	}

	var parsed deepLResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode deepl response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return nil, fmt.Errorf("deepl response missing translations")
	}

	translated := strings.TrimSpace(parsed.Translations[0].Text)
	if translated == "" {
		return nil, fmt.Errorf("deepl translation was empty")
	}

	sourceLang := normalizeLangCode(parsed.Translations[0].DetectedSourceLanguage)
	if sourceLang == "" {
		sourceLang = normalizeLangCode(req.SourceLang)
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: t.Provider(),
		KeyIndex:     t.keyIndex,
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}

func deepLStatusError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return fmt.Errorf("deepl status %d: %s", status, msg)
		}
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("deepl status %d: rate limited", status)
	case 456:
		return fmt.Errorf("deepl status %d: quota exceeded", status)
	}
	return fmt.Errorf("deepl status %d: %s", status, strings.TrimSpace(string(body)))
}

type deepLRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang,omitempty"`
	TargetLang string   `json:"target_lang"`
}

type deepLResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}
