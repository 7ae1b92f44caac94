package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAzureEndpoint is the global Azure Translator endpoint.
	DefaultAzureEndpoint = "https://api.cognitive.microsofttranslator.com"

	azureAPIVersion     = "3.0"
	defaultAzureTimeout = 30 * time.Second
)

// AzureTranslator calls the Azure Translator text API v3 with one
// subscription key.
type AzureTranslator struct {
	apiKey   string
	keyIndex int
	region   string
	baseURL  string
	client   *http.Client
}

func NewAzureTranslator(apiKey string, keyIndex int, endpoint, region string, timeout time.Duration) *AzureTranslator {
	if timeout <= 0 {
		timeout = defaultAzureTimeout
	}

	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if base == "" {
		base = DefaultAzureEndpoint
	}

	return &AzureTranslator{
		apiKey:   strings.TrimSpace(apiKey),
		keyIndex: keyIndex,
		region:   strings.TrimSpace(region),
		baseURL:  base,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *AzureTranslator) Provider() string {
	return ProviderAzure
}

func (t *AzureTranslator) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if t == nil {
		return nil, fmt.Errorf("azure translator is nil")
	}

	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}

	query := url.Values{}
	query.Set("api-version", azureAPIVersion)
	query.Set("to", targetLang)
	if source := normalizeLangCode(req.SourceLang); source != "" {
		query.Set("from", source)
	}

	body, err := json.Marshal([]azureTextItem{{Text: req.Text}})
	if err != nil {
		return nil, fmt.Errorf("marshal azure request: %w", err)
	}

	started := time.Now()
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/translate?"+query.Encode(),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build azure request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", t.apiKey)
	if t.region != "" {
		httpReq.Header.Set("Ocp-Apim-Subscription-Region", t.region)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send azure request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read azure response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, azureStatusError(resp.StatusCode, respBody)
	}

	var parsed []azureTranslateResult
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode azure response: %w", err)
	}
	if len(parsed) == 0 || len(parsed[0].Translations) == 0 {
		return nil, fmt.Errorf("azure response missing translations")
	}

	translated := strings.TrimSpace(parsed[0].Translations[0].Text)
	if translated == "" {
		return nil, fmt.Errorf("azure translation was empty")
	}

	sourceLang := normalizeLangCode(parsed[0].DetectedLanguage.Language)
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

func azureStatusError(status int, body []byte) error {
	var payload struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return fmt.Errorf("azure status %d (code %d): %s", status, payload.Error.Code, msg)
		}
	}
	return fmt.Errorf("azure status %d: %s", status, strings.TrimSpace(string(body)))
}

type azureTextItem struct {
	Text string `json:"Text"`
}

type azureTranslateResult struct {
	DetectedLanguage struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}
